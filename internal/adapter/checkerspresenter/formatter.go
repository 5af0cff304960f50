package checkerspresenter

import (
	"errors"
	"strings"

	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/park285/cheese-checkers/internal/pvpchan"
	"github.com/park285/cheese-checkers/internal/util"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
	"go.uber.org/zap"
)

const (
	checkersHelpInstruction    = "♟ 체커 (러시아 규칙)"
	checkersHistoryInstruction = "♟ 최근 대국"
)

// PrefixProvider exposes the command prefix Kakao messages should use.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders checkers DTOs into Kakao text through the message catalog.
type Formatter struct {
	prefixProvider PrefixProvider
	cat            *msgcat.Catalog
}

func NewFormatter(provider PrefixProvider, cat *msgcat.Catalog) *Formatter {
	return &Formatter{prefixProvider: provider, cat: cat}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

// render returns "" when the template is missing or fails; the failure is logged.
func (f *Formatter) render(key string, data map[string]any) string {
	if f == nil || f.cat == nil {
		return ""
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		obslog.L().Warn("msgcat_render_failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return out
}

func (f *Formatter) Help() string {
	text := f.render("help", map[string]any{"Prefix": f.Prefix()})
	return util.ApplyKakaoSeeMorePadding(text, checkersHelpInstruction)
}

func (f *Formatter) Start(state *checkersdto.BoardState) string {
	if state == nil {
		return ""
	}
	return f.render("pvp.start", map[string]any{
		"ShortID": util.ShortID(state.GameID),
		"White":   state.WhiteName,
		"Black":   state.BlackName,
	})
}

// Status is the one-line caption shown above a board.
func (f *Formatter) Status(state *checkersdto.BoardState) string {
	if state == nil {
		return f.NoGame()
	}
	return f.render("pvp.status", map[string]any{
		"White": state.WhiteName,
		"Black": state.BlackName,
		"Turn":  f.turnLine(state),
	})
}

func (f *Formatter) turnLine(state *checkersdto.BoardState) string {
	if state.Winner != "" {
		return f.render("pvp.finished", map[string]any{"Winner": nameOf(state, state.Winner)})
	}
	if state.Chain != "" {
		return f.render("pvp.continue", map[string]any{
			"Mover":   nameOf(state, state.Turn),
			"Square":  state.Chain,
			"Targets": joinSquares(state.Targets),
		})
	}
	return f.render("pvp.turn", map[string]any{"Name": nameOf(state, state.Turn)})
}

// Move summarizes one applied step: the step itself, a promotion, and what
// happens next (chain continuation, game end, or the next player's turn).
func (f *Formatter) Move(m *checkersdto.MoveSummary) string {
	if m == nil {
		return ""
	}
	lines := make([]string, 0, 3)
	if n := len(m.Captured); n > 0 {
		lines = append(lines, f.render("pvp.captured", map[string]any{"Mover": m.MoverName, "Move": m.Move, "Count": n}))
	} else {
		lines = append(lines, f.render("pvp.moved", map[string]any{"Mover": m.MoverName, "Move": m.Move}))
	}
	if m.Promoted {
		square := m.Move
		if i := strings.LastIndexAny(square, "-:"); i >= 0 {
			square = square[i+1:]
		}
		lines = append(lines, f.render("pvp.promoted", map[string]any{"Square": square}))
	}
	switch {
	case m.Finished:
		lines = append(lines, f.render("pvp.finished", map[string]any{"Winner": m.Winner}))
	case m.Continues:
		lines = append(lines, f.render("pvp.continue", map[string]any{
			"Mover":   m.MoverName,
			"Square":  m.ChainFrom,
			"Targets": joinSquares(m.Next),
		}))
	default:
		lines = append(lines, f.render("pvp.turn", map[string]any{"Name": m.NextName}))
	}
	return joinLines(lines)
}

// Selection lists where the piece on square can go.
func (f *Formatter) Selection(square string, targets []string, capture bool) string {
	if len(targets) == 0 {
		return f.render("select.none", map[string]any{"Square": square})
	}
	key := "select.moves"
	if capture {
		key = "select.captures"
	}
	return f.render(key, map[string]any{"Square": square, "Targets": joinSquares(targets)})
}

// Rejected explains a refused request.
func (f *Formatter) Rejected(err *checkersdto.DomainError) string {
	if err == nil {
		return ""
	}
	key := "error." + err.Code
	if f.cat == nil || !f.cat.Has(key) {
		key = "error.unknown"
	}
	return f.render(key, map[string]any{"Detail": err.Message, "Prefix": f.Prefix()})
}

func (f *Formatter) Resigned(loser, winner string) string {
	return f.render("pvp.resigned", map[string]any{"Loser": loser, "Winner": winner})
}

func (f *Formatter) NoGame() string { return f.render("pvp.no_game", nil) }

func (f *Formatter) ChallengeUsage() string {
	return f.render("pvp.usage", map[string]any{"Prefix": f.Prefix()})
}

func (f *Formatter) ChallengeFailed(reason string) string {
	return f.render("pvp.challenge_failed", map[string]any{"Reason": reason})
}

func (f *Formatter) UnknownCommand() string {
	return f.render("error.unknown_command", map[string]any{"Prefix": f.Prefix()})
}

func (f *Formatter) NoUser() string { return f.render("error.no_user", nil) }

func (f *Formatter) Failure(err error) string {
	if err == nil {
		return ""
	}
	return f.render("error.unknown", map[string]any{"Detail": err.Error()})
}

func (f *Formatter) LobbyCreated(code string) string {
	return f.render("lobby.created", map[string]any{"Code": code, "Prefix": f.Prefix()})
}

func (f *Formatter) LobbyJoined(name, code string) string {
	return f.render("lobby.joined", map[string]any{"Name": name, "Code": code})
}

func (f *Formatter) LobbyUsage() string {
	return f.render("lobby.usage", map[string]any{"Prefix": f.Prefix()})
}

func (f *Formatter) LobbyList(entries []checkersdto.LobbyEntry) string {
	if len(entries) == 0 {
		return f.render("lobby.empty", nil)
	}
	lines := []string{f.render("lobby.header", map[string]any{"Count": len(entries)})}
	for _, e := range entries {
		lines = append(lines, f.render("lobby.item", map[string]any{
			"Code":    e.Code,
			"Creator": e.CreatorName,
			"Color":   f.colorLabel(e.Color),
		}))
	}
	return joinLines(lines)
}

// LobbyError maps lobby sentinels to messages; other errors use the generic text.
func (f *Formatter) LobbyError(err error) string {
	keys := []struct {
		target error
		key    string
	}{
		{pvpchan.ErrChannelGone, "lobby.gone"},
		{pvpchan.ErrChannelActive, "lobby.active"},
		{pvpchan.ErrFull, "lobby.full"},
		{pvpchan.ErrSelfJoin, "lobby.self"},
		{pvpchan.ErrPlayerBusyInRoom, "lobby.busy"},
		{pvpchan.ErrCreatorHasLobby, "lobby.has_lobby"},
		{pvpchan.ErrInvalidArgs, "lobby.usage"},
	}
	for _, k := range keys {
		if errors.Is(err, k.target) {
			return f.render(k.key, map[string]any{"Prefix": f.Prefix()})
		}
	}
	return f.Failure(err)
}

// History lists userID's recent results from their side of the board.
func (f *Formatter) History(name, userID string, results []*checkersdto.GameResult) string {
	if len(results) == 0 {
		return f.render("history.empty", nil)
	}
	lines := []string{f.render("history.header", map[string]any{"Name": name})}
	for i, r := range results {
		if r == nil {
			continue
		}
		mine, opponent, myLeft, theirLeft := "white", r.BlackName, r.WhiteLeft, r.BlackLeft
		if r.BlackID == userID {
			mine, opponent, myLeft, theirLeft = "black", r.WhiteName, r.BlackLeft, r.WhiteLeft
		}
		result := f.render("history.loss", nil)
		if r.Result == mine {
			result = f.render("history.win", nil)
		}
		method := r.ResultMethod
		if f.cat != nil && f.cat.Has("history.method."+method) {
			method = f.render("history.method."+method, nil)
		}
		lines = append(lines, f.render("history.item", map[string]any{
			"Index":    i + 1,
			"Result":   result,
			"Opponent": opponent,
			"Color":    f.colorLabel(mine),
			"Method":   method,
			"Mine":     myLeft,
			"Theirs":   theirLeft,
			"Ended":    util.FormatKST(r.EndedAt, "01-02 15:04"),
		}))
	}
	return util.ApplyKakaoSeeMorePadding(joinLines(lines), checkersHistoryInstruction)
}

func (f *Formatter) colorLabel(c string) string {
	key := "color." + strings.ToLower(strings.TrimSpace(c))
	if f.cat == nil || !f.cat.Has(key) {
		return c
	}
	return f.render(key, nil)
}

func nameOf(state *checkersdto.BoardState, color string) string {
	if color == "black" {
		return state.BlackName
	}
	return state.WhiteName
}

func joinSquares(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

func joinLines(lines []string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
