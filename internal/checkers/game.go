package checkers

import "fmt"

// Game is the full rule-engine state. A Game is not safe for concurrent use;
// callers sharing one must serialize every LegalMoves and Apply call.
type Game struct {
	board  Board
	turn   Color
	left   [2]int
	winner Color
	over   bool

	// chain is set while the piece on pinned must keep capturing.
	chain  bool
	pinned Square
}

// NewGame returns the standard initial position with white to move.
func NewGame() *Game {
	g, _ := NewGameFromBoard(InitialBoard(), White)
	return g
}

// NewGameFromBoard starts a game from an arbitrary position. Remaining
// counts are taken from the board. No winner is decided here; the win check
// runs when a move passes the turn.
func NewGameFromBoard(b Board, turn Color) (*Game, error) {
	if turn != White && turn != Black {
		return nil, fmt.Errorf("%w: unknown side to move", ErrInvalidPosition)
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b[r][c]
			if p == NoPiece {
				continue
			}
			sq := Square{Row: r, Col: c}
			if !sq.Dark() {
				return nil, fmt.Errorf("%w: piece on light square %s", ErrInvalidPosition, sq)
			}
			if !p.IsKing() && r == p.Color().promotionRow() {
				return nil, fmt.Errorf("%w: unpromoted man on %s", ErrInvalidPosition, sq)
			}
		}
	}
	g := &Game{board: b, turn: turn}
	g.left[White] = b.Count(White)
	g.left[Black] = b.Count(Black)
	return g, nil
}

// Board returns a copy of the grid.
func (g *Game) Board() Board { return g.board }

// Piece returns the content of sq.
func (g *Game) Piece(sq Square) Piece { return g.board.At(sq) }

// Turn returns the side to move.
func (g *Game) Turn() Color { return g.turn }

// Remaining returns how many pieces the side still has.
func (g *Game) Remaining(c Color) int { return g.left[c] }

// Winner returns the winning side once one exists.
func (g *Game) Winner() (Color, bool) { return g.winner, g.over }

// Chain returns the square that must keep capturing, if a serial capture is
// in progress.
func (g *Game) Chain() (Square, bool) {
	if !g.chain {
		return Square{}, false
	}
	return g.pinned, true
}

// Status summarizes the state machine position.
func (g *Game) Status() Status {
	switch {
	case g.over:
		return GameOver
	case g.chain:
		return ChainInProgress
	default:
		return AwaitingSelection
	}
}

// Clone returns an independent copy.
func (g *Game) Clone() *Game {
	cp := *g
	return &cp
}

// Movable lists the squares of the side to move that have at least one
// legal move, in row-major order.
func (g *Game) Movable() []Square {
	var out []Square
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := Square{Row: r, Col: c}
			if len(g.LegalMoves(sq)) > 0 {
				out = append(out, sq)
			}
		}
	}
	return out
}
