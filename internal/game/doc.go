// Package game implements the Bestia round settlement engine.
//
// The main type is Engine, which owns the player ledger, the pot carried
// between rounds, the live round and the undo history. A presentation layer
// drives it through commands and renders what the query methods return;
// the engine never prompts, prints or persists anything itself.
//
// # Round lifecycle
//
// A round moves through these phases:
//
//	Idle -> Participants -> (Grouping) -> Winners -> Idle
//
// StartRound stakes the pot. Players opt in with ToggleParticipant and
// ConfirmParticipants either resolves the round at once (nobody played),
// skips straight to winner selection (nobody left out) or opens grouping,
// where players who stayed out may rejoin alone or as a group that shares
// a single seat. Each of the three sub-hands is then awarded to one entity
// with SetWinner, and Settle books the result and rotates the dealer.
//
//	e := game.New(game.WithRand(randutil.New(42)))
//	e.AddPlayer("Anna")
//	e.AddPlayer("Bruno")
//	e.LockStake("0,30")
//	e.StartRound(nil)
//	e.ToggleParticipant(brunoID)
//	...
//	report, ok := e.Settle()
//
// # Guards and errors
//
// Commands invoked outside their phase return false and leave state
// untouched. Only user-entry mistakes (an invalid stake) and structural
// dead ends (fewer than two entities to play the hand) are reported as
// errors.
//
// # Deterministic testing
//
// Fair-split tie-breaks draw from the *rand.Rand passed with WithRand, and
// hand timestamps come from the quartz.Clock passed with WithClock, so a
// seeded generator and a mock clock reproduce a session exactly.
package game
