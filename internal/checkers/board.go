package checkers

import (
	"fmt"
	"sort"
	"strings"
)

// Board is the 8×8 grid indexed [row][col].
type Board [Size][Size]Piece

// At returns the piece on sq, or NoPiece off the board.
func (b Board) At(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b[sq.Row][sq.Col]
}

func (b *Board) set(sq Square, p Piece) { b[sq.Row][sq.Col] = p }

func (b Board) empty(sq Square) bool {
	return sq.Valid() && b[sq.Row][sq.Col] == NoPiece
}

// Count returns the number of pieces of the given side, men and kings alike.
func (b Board) Count(c Color) int {
	n := 0
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if p := b[r][col]; p != NoPiece && p.Color() == c {
				n++
			}
		}
	}
	return n
}

// InitialBoard returns the standard starting position: black men on rows
// 0-2, white men on rows 5-7, dark squares only.
func InitialBoard() Board {
	var b Board
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if (r+c)%2 == 0 {
				continue
			}
			switch {
			case r < 3:
				b[r][c] = BlackMan
			case r > 4:
				b[r][c] = WhiteMan
			}
		}
	}
	return b
}

// Position encodes the board as eight '/'-separated rows from row 0.
func (b Board) Position() string {
	var sb strings.Builder
	sb.Grow(Size*Size + Size - 1)
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < Size; c++ {
			sb.WriteRune(b[r][c].Rune())
		}
	}
	return sb.String()
}

// ParsePosition decodes Position text. Pieces on light squares are rejected.
func ParsePosition(s string) (Board, error) {
	var b Board
	rows := strings.Split(strings.TrimSpace(s), "/")
	if len(rows) != Size {
		return b, fmt.Errorf("%w: want %d rows, got %d", ErrInvalidPosition, Size, len(rows))
	}
	for r, row := range rows {
		runes := []rune(row)
		if len(runes) != Size {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrInvalidPosition, r, len(runes))
		}
		for c, ch := range runes {
			p, ok := pieceFromRune(ch)
			if !ok {
				return b, fmt.Errorf("%w: bad cell %q at row %d", ErrInvalidPosition, ch, r)
			}
			if p != NoPiece && (r+c)%2 == 0 {
				return b, fmt.Errorf("%w: piece on light square %s", ErrInvalidPosition, Square{Row: r, Col: c})
			}
			b[r][c] = p
		}
	}
	return b, nil
}

// String draws the board with rank and file labels, white at the bottom.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		fmt.Fprintf(&sb, "%d ", Size-r)
		for c := 0; c < Size; c++ {
			sb.WriteRune(b[r][c].Rune())
			if c < Size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

func sortSquares(list []Square) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Row != list[j].Row {
			return list[i].Row < list[j].Row
		}
		return list[i].Col < list[j].Col
	})
}
