package checkers

// LegalMoves returns the moves available to the piece on from. It returns an
// empty set when the game is over, when from does not hold a piece of the
// side to move, or when a serial capture pins another square.
//
// Captures are mandatory: if the piece can capture only captures are
// returned, and if it cannot but another piece of the same side can, the
// piece has no moves at all.
func (g *Game) LegalMoves(from Square) Moves {
	moves := Moves{}
	if g.over || !from.Valid() {
		return moves
	}
	p := g.board.At(from)
	if p == NoPiece || p.Color() != g.turn {
		return moves
	}
	if g.chain && from != g.pinned {
		return moves
	}

	if captures := g.captures(from, p); len(captures) > 0 {
		return captures
	}
	// mid-chain only captures may continue
	if g.chain {
		return moves
	}
	if g.mustCaptureElsewhere(from) {
		return moves
	}
	return g.quietMoves(from, p)
}

// quietMoves generates non-capturing steps: one forward diagonal step for a
// man, whole open rays for a king.
func (g *Game) quietMoves(from Square, p Piece) Moves {
	moves := Moves{}
	if p.IsKing() {
		for _, d := range diagonals {
			for to := from.step(d); g.board.empty(to); to = to.step(d) {
				moves[to] = []Square{}
			}
		}
		return moves
	}
	for _, d := range forwardDiagonals(p.Color()) {
		if to := from.step(d); g.board.empty(to) {
			moves[to] = []Square{}
		}
	}
	return moves
}

// captures generates single-piece captures in all four directions. A king
// flies to the first occupied square and may land on any empty square
// beyond the captured piece; a man jumps an adjacent piece and lands
// directly behind it.
func (g *Game) captures(from Square, p Piece) Moves {
	moves := Moves{}
	for _, d := range diagonals {
		target := from.step(d)
		if p.IsKing() {
			for g.board.empty(target) {
				target = target.step(d)
			}
		}
		victim := g.board.At(target)
		if victim == NoPiece || victim.Color() == p.Color() {
			continue
		}
		for land := target.step(d); g.board.empty(land); land = land.step(d) {
			moves[land] = []Square{target}
			if !p.IsKing() {
				break
			}
		}
	}
	return moves
}

// mustCaptureElsewhere reports whether a piece of the side to move other
// than the one on skip has a capture.
func (g *Game) mustCaptureElsewhere(skip Square) bool {
	if g.chain {
		return false
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			sq := Square{Row: r, Col: c}
			if sq == skip {
				continue
			}
			p := g.board.At(sq)
			if p == NoPiece || p.Color() != g.turn {
				continue
			}
			if len(g.captures(sq, p)) > 0 {
				return true
			}
		}
	}
	return false
}
