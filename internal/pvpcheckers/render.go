package pvpcheckers

import (
	"context"
	"fmt"

	"github.com/park285/cheese-checkers/internal/checkers"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

// ToDTO renders the board PNG and builds the presenter state. sel, when
// given, adds the selected piece and its destinations to the picture. The
// board is drawn from the side to move.
func (m *Manager) ToDTO(ctx context.Context, g *Game, sel *Selection) (*checkersdto.BoardState, error) {
	if m == nil || g == nil {
		return nil, nil
	}
	if g.State == nil {
		return nil, fmt.Errorf("game %s has no state", g.ID)
	}
	st := g.State
	score := svc.Score{White: st.Remaining(checkers.White), Black: st.Remaining(checkers.Black)}
	opts := svc.RenderOptions{
		HUDHeader: fmt.Sprintf("%s vs %s", g.WhiteName, g.BlackName),
		HUDTurn:   hudTurn(g),
		LastMove:  lastHighlight(g),
		Score:     &score,
		Flip:      st.Turn() == checkers.Black,
	}

	state := &checkersdto.BoardState{
		GameID:    g.ID,
		Position:  st.Board().Position(),
		Turn:      st.Turn().String(),
		Score:     checkersdto.Score{White: score.White, Black: score.Black},
		Status:    string(g.Status),
		Winner:    g.Outcome,
		WhiteName: g.WhiteName,
		BlackName: g.BlackName,
		MoveCount: g.Version,
	}
	if g.LastFrom != "" {
		state.LastMove = g.LastFrom + "-" + g.LastTo
	}
	if pinned, ok := st.Chain(); ok {
		state.Chain = pinned.String()
	}
	if g.Status == StatusActive {
		state.Movable = squareNames(st.Movable())
	}

	if sel != nil && (sel.Rejected == nil || len(sel.Moves) > 0) {
		sq := sel.Square
		opts.Selected = &sq
		opts.Targets = sel.Moves.Destinations()
		for _, caps := range sel.Moves {
			opts.Captures = append(opts.Captures, caps...)
		}
		state.Selected = sq.String()
		state.Targets = squareNames(opts.Targets)
	}

	png, err := m.renderer.RenderPNG(ctx, st.Board(), opts)
	if err != nil {
		return nil, err
	}
	state.BoardImage = png
	return state, nil
}

func hudTurn(g *Game) string {
	if g.Status != StatusActive {
		if g.Outcome != "" {
			return g.Outcome + " wins"
		}
		return "game over"
	}
	turn := g.State.Turn().String()
	if pinned, ok := g.State.Chain(); ok {
		return fmt.Sprintf("%s continues from %s", turn, pinned)
	}
	return fmt.Sprintf("%s to move (#%d)", turn, g.Version+1)
}

func lastHighlight(g *Game) *svc.MoveHighlight {
	from, err := checkers.ParseSquare(g.LastFrom)
	if err != nil {
		return nil
	}
	to, err := checkers.ParseSquare(g.LastTo)
	if err != nil {
		return nil
	}
	return &svc.MoveHighlight{From: from, To: to}
}

func squareNames(list []checkers.Square) []string {
	out := make([]string, 0, len(list))
	for _, sq := range list {
		out = append(out, sq.String())
	}
	return out
}
