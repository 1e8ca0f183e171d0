package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Play      PlayCmd          `cmd:"" default:"1" help:"Run the interactive session (default)"`
	Status    StatusCmd        `cmd:"" help:"Show pot, stake, dealer and round"`
	Totals    TotalsCmd        `cmd:"" help:"Show player totals"`
	History   HistoryCmd       `cmd:"" help:"Show every settled hand"`
	Stats     StatsCmd         `cmd:"" help:"Show per-player results"`
	Transfers TransfersCmd     `cmd:"" help:"Show who pays whom to settle up"`
	Player    PlayerCmd        `cmd:"" help:"Manage the roster"`
	Lock      LockCmd          `cmd:"" help:"Lock the dealer stake"`
	Round     RoundCmd         `cmd:"" help:"Play one round non-interactively"`
	Undo      UndoCmd          `cmd:"" help:"Revert the last operation"`
	Reset     ResetCmd         `cmd:"" help:"Discard the whole game"`
	Sessions  SessionsCmd      `cmd:"" help:"List saved sessions (sqlite and postgres)"`
}

// Globals are available to every command.
type Globals struct {
	Config   string `short:"c" default:"bestia.hcl" type:"path" help:"HCL config file"`
	EnvFile  string `name:"env-file" default:".env" help:"dotenv file loaded before the environment is read"`
	LogLevel string `name:"log-level" help:"Override the configured log level"`
	NoColor  bool   `name:"no-color" help:"Disable colored output"`
	Session  string `short:"s" help:"Override the configured session name"`
	Driver   string `help:"Override the configured storage driver"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bestia"),
		kong.Description("Money settlement for the Bestia card game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
