package entity

import "errors"

var (
	// ErrInvalidTunable is returned when a prefab carries a value the
	// behavior cannot run with (negative speed, non-positive health, ...).
	ErrInvalidTunable = errors.New("entity: invalid tunable")
	// ErrMissingPlayer is returned when an enemy is built without a live
	// player to perceive.
	ErrMissingPlayer = errors.New("entity: missing player")
	// ErrInvalidBehavior is returned when an enemy's FSM or script fails
	// to compile.
	ErrInvalidBehavior = errors.New("entity: invalid behavior")
)
