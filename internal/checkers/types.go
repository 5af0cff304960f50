// Package checkers implements the rules of Russian draughts on an 8×8 board:
// move and capture generation, the mandatory-capture law, serial captures,
// promotion and win bookkeeping.
package checkers

import (
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// MarshalText encodes the color as "white" or "black".
func (c Color) MarshalText() ([]byte, error) {
	if c != White && c != Black {
		return nil, fmt.Errorf("checkers: unknown color %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts "white"/"w" and "black"/"b".
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a side name.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("checkers: unknown color %q", s)
	}
}

// forward is the row delta of a man's quiet step.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// promotionRow is the opponent's back rank.
func (c Color) promotionRow() int {
	if c == White {
		return 0
	}
	return Size - 1
}

// Piece is the content of a board cell. Color and rank are both carried by
// the tag and recovered with Color and IsKing.
type Piece uint8

const (
	NoPiece Piece = iota
	WhiteMan
	BlackMan
	WhiteKing
	BlackKing
)

// NewPiece builds the piece of the given side and rank.
func NewPiece(c Color, king bool) Piece {
	switch {
	case c == White && king:
		return WhiteKing
	case c == White:
		return WhiteMan
	case king:
		return BlackKing
	default:
		return BlackMan
	}
}

// Color returns the owning side. It is meaningless for NoPiece.
func (p Piece) Color() Color {
	switch p {
	case BlackMan, BlackKing:
		return Black
	default:
		return White
	}
}

// IsKing reports whether the piece is promoted.
func (p Piece) IsKing() bool {
	switch p {
	case WhiteKing, BlackKing:
		return true
	default:
		return false
	}
}

// Promoted returns the king of the same side.
func (p Piece) Promoted() Piece {
	switch p {
	case WhiteMan:
		return WhiteKing
	case BlackMan:
		return BlackKing
	default:
		return p
	}
}

// Rune is the position-text symbol of the piece.
func (p Piece) Rune() rune {
	switch p {
	case WhiteMan:
		return 'w'
	case BlackMan:
		return 'b'
	case WhiteKing:
		return 'W'
	case BlackKing:
		return 'B'
	default:
		return '.'
	}
}

func (p Piece) String() string {
	switch p {
	case WhiteMan:
		return "white man"
	case BlackMan:
		return "black man"
	case WhiteKing:
		return "white king"
	case BlackKing:
		return "black king"
	default:
		return "empty"
	}
}

func pieceFromRune(r rune) (Piece, bool) {
	switch r {
	case '.':
		return NoPiece, true
	case 'w':
		return WhiteMan, true
	case 'b':
		return BlackMan, true
	case 'W':
		return WhiteKing, true
	case 'B':
		return BlackKing, true
	default:
		return NoPiece, false
	}
}

// Square is a board coordinate. Row 0 is black's back rank.
type Square struct {
	Row int
	Col int
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// Dark reports whether the square is a playing square.
func (s Square) Dark() bool {
	return (s.Row+s.Col)%2 == 1
}

func (s Square) step(d direction) Square {
	return Square{Row: s.Row + d.dr, Col: s.Col + d.dc}
}

type direction struct{ dr, dc int }

var diagonals = [4]direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

func forwardDiagonals(c Color) []direction {
	f := c.forward()
	return []direction{{f, -1}, {f, 1}}
}

// Moves maps a destination to the squares it captures. A quiet move has an
// empty list; a capture lists exactly one square.
type Moves map[Square][]Square

// Captures reports whether the set holds capturing candidates.
func (m Moves) Captures() bool {
	for _, captured := range m {
		if len(captured) > 0 {
			return true
		}
	}
	return false
}

// Destinations returns the keys in row-major order.
func (m Moves) Destinations() []Square {
	out := make([]Square, 0, len(m))
	for sq := range m {
		out = append(out, sq)
	}
	sortSquares(out)
	return out
}

// Status is the coarse lifecycle state of a game.
type Status uint8

const (
	AwaitingSelection Status = iota
	ChainInProgress
	GameOver
)

func (s Status) String() string {
	switch s {
	case AwaitingSelection:
		return "awaiting_selection"
	case ChainInProgress:
		return "chain_in_progress"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}
