package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/bestia/internal/game"
	"github.com/lox/bestia/internal/ledger"
	"github.com/lox/bestia/internal/money"
	"github.com/lox/bestia/internal/statistics"
	"github.com/lox/bestia/internal/transfer"
)

// Renderer turns engine state into text for the terminal.
type Renderer struct {
	f *money.Formatter
}

// NewRenderer returns a renderer formatting amounts with f.
func NewRenderer(f *money.Formatter) *Renderer {
	if f == nil {
		f = money.NewFormatter("en", "")
	}
	return &Renderer{f: f}
}

// Amount formats an amount with its currency symbol.
func (r *Renderer) Amount(a money.Amount) string {
	return r.f.Format(a)
}

func (r *Renderer) signed(a money.Amount) string {
	return amountStyle(sign(a)).Render(r.f.Signed(a))
}

func sign(a money.Amount) int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...)
}

// Totals renders the roster with running totals; the dealer is starred.
func (r *Renderer) Totals(players []ledger.Player, dealerID string) string {
	if len(players) == 0 {
		return InfoStyle.Render("No players yet.")
	}
	t := newTable("", "Player", "Total")
	for i, p := range players {
		marker := ""
		if p.ID == dealerID {
			marker = "*"
		}
		t.Row(strconv.Itoa(i+1)+marker, p.Name, r.signed(p.Total))
	}
	return t.String()
}

// History renders one row per settled hand with each player's delta, and
// a footer with the totals.
func (r *Renderer) History(players []ledger.Player, hands []ledger.HandRecord) string {
	if len(hands) == 0 {
		return InfoStyle.Render("No hands played yet.")
	}

	headers := []string{"#", "Pot", "Pot ±"}
	for _, p := range players {
		headers = append(headers, p.Name)
	}
	t := newTable(headers...)

	for i, h := range hands {
		row := []string{strconv.Itoa(i + 1), r.f.Format(h.Base), r.signed(-h.Sum())}
		for _, p := range players {
			d, ok := h.Delta(p.ID)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, r.signed(d))
		}
		t.Row(row...)
	}

	footer := []string{"Σ", "", ""}
	for _, p := range players {
		footer = append(footer, r.signed(p.Total))
	}
	t.Row(footer...)
	return t.String()
}

// Stats renders each player's results per hand.
func (r *Renderer) Stats(stats []*statistics.Statistics) string {
	if len(stats) == 0 {
		return InfoStyle.Render("No players yet.")
	}
	t := newTable("Player", "Hands", "Won", "Lost", "Passed", "Net", "Mean", "Median", "Best", "Worst")
	for _, s := range stats {
		if s.Hands == 0 {
			t.Row(s.Name, "0", "", "", "", "", "", "", "", "")
			continue
		}
		t.Row(s.Name,
			strconv.Itoa(s.Hands),
			fmt.Sprintf("%d (%.0f%%)", s.Wins, s.WinRate()*100),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Passes),
			r.signed(s.Net),
			r.signed(s.Mean()),
			r.signed(s.Median()),
			r.signed(s.Best),
			r.signed(s.Worst))
	}
	return t.String()
}

// Report renders the outcome of a contested settlement.
func (r *Renderer) Report(rep *game.Report, name func(string) string) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" Round settled "))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Pot in play: %s\n", r.f.Format(rep.StartingPot))

	for _, ent := range rep.Entities {
		fmt.Fprintf(&b, "  %s took %s\n", ent.Label, ent.Fraction())
	}

	t := newTable("Player", "Won", "Paid")
	for _, p := range rep.Players {
		won, paid := "", ""
		if p.Win > 0 {
			won = GainStyle.Render(r.f.Format(p.Win))
		}
		if p.Lose > 0 {
			paid = LossStyle.Render(r.f.Format(p.Lose))
		}
		t.Row(p.Name, won, paid)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	if rep.DealerStake > 0 {
		fmt.Fprintf(&b, "%s pays the stake of %s\n", name(rep.DealerID), r.f.Format(rep.DealerStake))
	}
	if rep.EveryoneTook {
		b.WriteString(SuccessStyle.Render("Everyone took a hand: the pot is emptied."))
	} else {
		fmt.Fprintf(&b, "%d to pay: next pot %s",
			rep.Losers, PotStyle.Render(r.f.Format(rep.NextPot)))
	}
	return b.String()
}

// Transfers renders the payments that settle the game.
func (r *Renderer) Transfers(players []ledger.Player, transfers []transfer.Transfer, name func(string) string) string {
	if len(transfers) == 0 {
		return SuccessStyle.Render("Nothing to settle.")
	}
	t := newTable("From", "To", "Amount")
	for _, tr := range transfers {
		t.Row(name(tr.From), name(tr.To), r.f.Format(tr.Amount))
	}

	var open []string
	left := transfer.Apply(players, transfers)
	for _, p := range players {
		if left[p.ID].Abs() > transfer.Epsilon {
			open = append(open, fmt.Sprintf("%s %s", p.Name, r.signed(left[p.ID])))
		}
	}
	if len(open) == 0 {
		return t.String() + "\n" + SuccessStyle.Render("Everyone is square after these payments.")
	}
	return t.String() + "\n" + ErrorStyle.Render("Still open: "+strings.Join(open, ", "))
}

// Status renders pot, stake, dealer and the state of the live round.
func (r *Renderer) Status(e *game.Engine) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pot: %s\n", PotStyle.Render(r.f.Format(e.Pot())))
	if e.Locked() {
		fmt.Fprintf(&b, "Stake: %s (locked)\n", r.f.Format(e.Stake()))
	} else {
		b.WriteString("Stake: not locked\n")
	}
	if d, ok := e.Dealer(); ok {
		fmt.Fprintf(&b, "Dealer: %s\n", DealerStyle.Render(d.Name))
	}
	fmt.Fprintf(&b, "Hands played: %d\n", len(e.Hands()))

	round := e.Round()
	if !round.Active {
		if e.RegistrationOpen() {
			b.WriteString(InfoStyle.Render("Registration open"))
		} else {
			b.WriteString(InfoStyle.Render("Registration closed until the pot is won"))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Round: %s, base %s\n",
		PhaseStyle.Render(round.Phase.String()), r.f.Format(round.BasePot))
	b.WriteString(r.Round(e))
	return b.String()
}

// Round renders the selections made so far in the live round.
func (r *Renderer) Round(e *game.Engine) string {
	round := e.Round()
	var lines []string

	switch round.Phase {
	case game.PhaseParticipants:
		var in []string
		for _, id := range round.Participants {
			in = append(in, e.Name(id))
		}
		var order []string
		for _, p := range e.ChoiceOrder() {
			order = append(order, p.Name)
		}
		lines = append(lines,
			"Asking: "+strings.Join(order, ", "),
			"Playing: "+joinOrDash(in))

	case game.PhaseGrouping:
		var labels []string
		for _, ent := range e.Entities() {
			labels = append(labels, ent.Label)
		}
		var out []string
		for _, p := range e.NonParticipants() {
			out = append(out, p.Name)
		}
		lines = append(lines,
			"Playing: "+joinOrDash(labels),
			"Out: "+joinOrDash(out))

	case game.PhaseWinners:
		var labels []string
		for _, ent := range e.Entities() {
			labels = append(labels, ent.Label)
		}
		lines = append(lines, "Playing: "+joinOrDash(labels))
		for slot, id := range round.Winners {
			label := "-"
			if id != "" {
				label = entityLabel(e, id)
			}
			lines = append(lines, fmt.Sprintf("Hand %d: %s", slot+1, label))
		}
	}
	return strings.Join(lines, "\n")
}

func entityLabel(e *game.Engine, id string) string {
	for _, ent := range e.Entities() {
		if ent.ID == id {
			return ent.Label
		}
	}
	return e.Name(id)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
