package checkers

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrGameOver        = errors.New("game is over")
	ErrInvalidSquare   = errors.New("invalid square")
	ErrInvalidPosition = errors.New("invalid position")
)

// MoveError carries the rejected move. It unwraps to one of the sentinels.
type MoveError struct {
	From Square
	To   Square
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }
