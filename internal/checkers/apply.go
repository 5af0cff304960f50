package checkers

// Apply moves the piece on from to to, removing the captured squares. The
// triple must be one produced by LegalMoves; anything else fails with
// ErrIllegalMove and leaves the game unchanged.
//
// After a capture the same piece keeps the turn while it can capture again,
// with king geometry if it was just promoted. Otherwise the turn passes and
// the win condition is evaluated. The boolean reports whether this step
// captured.
func (g *Game) Apply(from, to Square, captured []Square) (bool, error) {
	if g.over {
		return false, &MoveError{From: from, To: to, Err: ErrGameOver}
	}
	if !from.Valid() || !to.Valid() {
		return false, &MoveError{From: from, To: to, Err: ErrInvalidSquare}
	}
	want, ok := g.LegalMoves(from)[to]
	if !ok || !sameSquares(want, captured) {
		return false, &MoveError{From: from, To: to, Err: ErrIllegalMove}
	}
	return g.apply(from, to, want), nil
}

// Play applies the legal move from→to using the capture list the engine
// derives for it.
func (g *Game) Play(from, to Square) (bool, error) {
	if g.over {
		return false, &MoveError{From: from, To: to, Err: ErrGameOver}
	}
	captured, ok := g.LegalMoves(from)[to]
	if !ok {
		return false, &MoveError{From: from, To: to, Err: ErrIllegalMove}
	}
	return g.apply(from, to, captured), nil
}

func (g *Game) apply(from, to Square, captured []Square) bool {
	piece := g.board.At(from)
	g.board.set(from, NoPiece)
	g.board.set(to, piece)

	tookAny := len(captured) > 0
	for _, sq := range captured {
		victim := g.board.At(sq)
		if victim == NoPiece {
			continue
		}
		g.left[victim.Color()]--
		g.board.set(sq, NoPiece)
	}

	if !piece.IsKing() && to.Row == piece.Color().promotionRow() {
		piece = piece.Promoted()
		g.board.set(to, piece)
	}

	if tookAny && len(g.captures(to, piece)) > 0 {
		g.chain = true
		g.pinned = to
		return tookAny
	}
	g.chain = false
	g.pinned = Square{}
	g.turn = g.turn.Opponent()
	g.checkWin()
	return tookAny
}

func (g *Game) checkWin() {
	switch {
	case g.left[White] <= 0:
		g.winner, g.over = Black, true
	case g.left[Black] <= 0:
		g.winner, g.over = White, true
	}
}

func sameSquares(a, b []Square) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
