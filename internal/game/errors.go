package game

import "errors"

var (
	// ErrInvalidStake is returned when the dealer stake is not a finite,
	// non-negative amount.
	ErrInvalidStake = errors.New("invalid stake")

	// ErrNotEnoughEntities is returned when winner selection would open with
	// fewer than two competing entities. The round stays in its current
	// phase and the caller should go back and add players.
	ErrNotEnoughEntities = errors.New("at least two entities are needed to play the hand")
)
