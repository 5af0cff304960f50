package checkerspresenter

import (
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"
	"github.com/park285/cheese-checkers/internal/pvpchan"
	"github.com/park285/cheese-checkers/internal/pvpcheckers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

// ToDTOMove converts an applied step. state is the rendered board after it.
func ToDTOMove(r *pvpcheckers.MoveResult, state *checkersdto.BoardState) *checkersdto.MoveSummary {
	if r == nil || !r.Applied() || r.Game == nil {
		return nil
	}
	g := r.Game
	out := &checkersdto.MoveSummary{
		Mover:     r.Mover.String(),
		MoverName: g.PlayerName(r.Mover),
		Move:      checkers.FormatMove(r.From, r.To, r.Captured),
		Captured:  squares(r.Captured),
		Promoted:  r.Promoted,
		Continues: r.Continues,
		Finished:  r.Finished,
		State:     state,
	}
	if r.Continues {
		out.ChainFrom = r.To.String()
		out.Next = squares(r.Next.Destinations())
		out.NextName = out.MoverName
	} else if g.State != nil {
		out.NextName = g.PlayerName(g.State.Turn())
	}
	if r.Finished {
		out.Winner = g.PlayerName(r.Mover)
		if g.Outcome != "" {
			if c, err := checkers.ParseColor(g.Outcome); err == nil {
				out.Winner = g.PlayerName(c)
			}
		}
	}
	return out
}

func ToDTOResults(list []*domain.CheckersResult) []*checkersdto.GameResult {
	out := make([]*checkersdto.GameResult, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		out = append(out, &checkersdto.GameResult{
			GameID:        r.GameID,
			WhiteID:       r.WhiteID,
			WhiteName:     r.WhiteName,
			BlackID:       r.BlackID,
			BlackName:     r.BlackName,
			Result:        r.Result,
			ResultMethod:  r.ResultMethod,
			FinalPosition: r.FinalPosition,
			WhiteLeft:     r.WhiteLeft,
			BlackLeft:     r.BlackLeft,
			StartedAt:     r.StartedAt,
			EndedAt:       r.EndedAt,
			Duration:      r.Duration,
		})
	}
	return out
}

func ToDTOLobby(list []*pvpchan.ChannelMeta) []checkersdto.LobbyEntry {
	out := make([]checkersdto.LobbyEntry, 0, len(list))
	for _, m := range list {
		if m == nil {
			continue
		}
		color := string(m.CreatorColor)
		if color == "" {
			color = string(pvpchan.ColorRandom)
		}
		out = append(out, checkersdto.LobbyEntry{Code: m.ID, CreatorName: m.CreatorName, Color: color})
	}
	return out
}

func squares(list []checkers.Square) []string {
	out := make([]string, 0, len(list))
	for _, sq := range list {
		out = append(out, sq.String())
	}
	return out
}
