package checkers

import (
	"fmt"
	"strings"
)

// String renders the square in draughts notation: files a-h left to right,
// ranks 1-8 from white's side.
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, Size-s.Row)
}

// ParseSquare parses "c3"-style notation.
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Square{Row: Size - int(rank-'0'), Col: int(file - 'a')}, nil
}

// ParseMove parses "c3-d4", "c3:e5" or "c3xe5". The separator is only a
// hint; the captured pieces always come from LegalMoves.
func ParseMove(s string) (from, to Square, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	idx := strings.IndexAny(s, "-:x")
	if idx < 0 {
		return Square{}, Square{}, fmt.Errorf("%w: missing separator in %q", ErrIllegalMove, s)
	}
	if from, err = ParseSquare(s[:idx]); err != nil {
		return Square{}, Square{}, err
	}
	if to, err = ParseSquare(s[idx+1:]); err != nil {
		return Square{}, Square{}, err
	}
	return from, to, nil
}

// FormatMove renders a single step, using ':' for captures.
func FormatMove(from, to Square, captured []Square) string {
	sep := "-"
	if len(captured) > 0 {
		sep = ":"
	}
	return from.String() + sep + to.String()
}

// LooksLikeMove reports whether s has move shape rather than a single square.
func LooksLikeMove(s string) bool {
	return strings.ContainsAny(strings.TrimSpace(s), "-:x")
}
