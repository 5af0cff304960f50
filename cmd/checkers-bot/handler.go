package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/park285/cheese-checkers/internal/adapter/checkerspresenter"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/checkersbuilder"
	"github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/irisfast"
	"github.com/park285/cheese-checkers/internal/pvp"
	"github.com/park285/cheese-checkers/internal/pvpchan"
	"github.com/park285/cheese-checkers/internal/pvpcheckers"
	"github.com/park285/cheese-checkers/internal/util"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
	"go.uber.org/zap"
)

const commandWord = "체커"

// bot turns chat messages into game operations and replies.
type bot struct {
	cfg       *config.AppConfig
	deps      *checkersbuilder.Deps
	presenter *checkerspresenter.Presenter
	formatter *checkerspresenter.Formatter
	logger    *zap.Logger
}

// sender identifies who wrote a message and where.
type sender struct {
	id   string
	name string
	room string
}

func senderOf(msg *irisfast.Message) sender {
	s := sender{room: strings.TrimSpace(msg.Room)}
	if msg.JSON != nil {
		s.id = strings.TrimSpace(msg.JSON.UserID)
	}
	if msg.Sender != nil {
		s.name = strings.TrimSpace(*msg.Sender)
	}
	if s.id == "" {
		s.id = s.name
	}
	if s.name == "" {
		s.name = s.id
	}
	return s
}

// commandArgs returns the words after "<prefix>체커", or ok=false when the
// message is not addressed to the bot.
func (b *bot) commandArgs(text string) ([]string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, b.cfg.BotPrefix) {
		return nil, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, b.cfg.BotPrefix))
	if !strings.HasPrefix(rest, commandWord) {
		return nil, false
	}
	return strings.Fields(strings.TrimPrefix(rest, commandWord)), true
}

func (b *bot) handle(ctx context.Context, msg *irisfast.Message) {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" {
		return
	}
	if !b.cfg.RoomAllowed(msg.Room) {
		return
	}
	args, ok := b.commandArgs(msg.Msg)
	if !ok {
		return
	}
	from := senderOf(msg)
	if from.id == "" {
		b.reply(from.room, b.formatter.NoUser())
		return
	}

	if len(args) == 0 {
		b.reply(from.room, b.formatter.Help())
		return
	}
	sub := args[0]
	switch {
	case strings.HasPrefix(sub, "@"):
		b.challenge(ctx, from, args)
	case sub == "도움말" || strings.EqualFold(sub, "help"):
		b.reply(from.room, b.formatter.Help())
	case sub == "방만들기":
		b.makeLobby(ctx, from, args[1:])
	case sub == "참가":
		b.joinLobby(ctx, from, args[1:])
	case sub == "방목록":
		b.listLobby(ctx, from)
	case sub == "현황":
		b.status(ctx, from)
	case sub == "기권":
		b.resign(ctx, from)
	case sub == "기록":
		b.history(ctx, from, args[1:])
	case checkers.LooksLikeMove(sub):
		b.move(ctx, from, sub)
	default:
		if _, err := checkers.ParseSquare(sub); err == nil {
			b.selectSquare(ctx, from, sub)
			return
		}
		b.reply(from.room, b.formatter.UnknownCommand())
	}
}

func (b *bot) challenge(ctx context.Context, from sender, args []string) {
	target := util.SanitizeMention(args[0])
	if target == "" {
		b.reply(from.room, b.formatter.ChallengeUsage())
		return
	}
	color := pvp.ColorRandom
	if len(args) > 1 {
		color = pvp.ParseColorChoice(args[1])
	}
	ch, err := b.deps.Challenges.CreateChallenge(from.room, from.id, from.name, target, target, color)
	if err != nil {
		b.reply(from.room, b.formatter.ChallengeFailed(err.Error()))
		return
	}
	g, err := b.deps.Games.CreateGameFromChallenge(ctx, ch.OriginRoom, ch.ResolveRoom, ch.ChallengerID, ch.ChallengerName, ch.TargetID, ch.TargetName, string(ch.Color))
	if err != nil {
		b.reply(from.room, b.formatter.ChallengeFailed(err.Error()))
		return
	}
	b.showGame(ctx, g, nil, rooms(g), b.formatter.Start)
}

func (b *bot) makeLobby(ctx context.Context, from sender, args []string) {
	color := pvpchan.ColorRandom
	if len(args) > 0 {
		color = pvpchan.ParseColorChoice(args[0])
	}
	res, err := b.deps.Lobby.Make(ctx, from.room, from.id, from.name, color)
	if err != nil {
		b.reply(from.room, b.formatter.LobbyError(err))
		return
	}
	b.reply(from.room, b.formatter.LobbyCreated(res.Code))
}

func (b *bot) joinLobby(ctx context.Context, from sender, args []string) {
	if len(args) == 0 {
		b.reply(from.room, b.formatter.LobbyUsage())
		return
	}
	code := strings.ToUpper(args[0])
	res, err := b.deps.Lobby.Join(ctx, from.room, code, from.id, from.name)
	if err != nil {
		b.reply(from.room, b.formatter.LobbyError(err))
		return
	}
	if !res.Started {
		b.reply(from.room, b.formatter.LobbyJoined(from.name, code))
		return
	}
	g, err := b.deps.Games.LoadGame(ctx, res.GameID)
	if err != nil || g == nil {
		b.reply(from.room, b.formatter.Failure(orNoGame(err)))
		return
	}
	targets, err := b.deps.Lobby.Rooms(ctx, code)
	if err != nil || len(targets) == 0 {
		targets = rooms(g)
	}
	b.showGame(ctx, g, nil, targets, func(state *checkersdto.BoardState) string {
		return b.formatter.LobbyJoined(from.name, code) + "\n" + b.formatter.Start(state)
	})
}

func (b *bot) listLobby(ctx context.Context, from sender) {
	list, err := b.deps.Lobby.ListLobby(ctx)
	if err != nil {
		b.reply(from.room, b.formatter.LobbyError(err))
		return
	}
	b.reply(from.room, b.formatter.LobbyList(checkerspresenter.ToDTOLobby(list)))
}

func (b *bot) status(ctx context.Context, from sender) {
	g, err := b.activeGame(ctx, from)
	if err != nil {
		b.reply(from.room, b.formatter.Failure(err))
		return
	}
	if g == nil {
		b.reply(from.room, b.formatter.NoGame())
		return
	}
	var sel *pvpcheckers.Selection
	if pinned, chain := g.State.Chain(); chain {
		sel = &pvpcheckers.Selection{Game: g, Square: pinned, Moves: g.State.LegalMoves(pinned)}
	}
	b.showGame(ctx, g, sel, []string{from.room}, b.formatter.Status)
}

func (b *bot) resign(ctx context.Context, from sender) {
	g, err := b.deps.Games.ResignByRoom(ctx, from.id, from.room)
	if err == nil && g == nil {
		g, err = b.deps.Games.Resign(ctx, from.id)
	}
	if err != nil {
		b.reply(from.room, b.formatter.Failure(err))
		return
	}
	if g == nil {
		b.reply(from.room, b.formatter.NoGame())
		return
	}
	loser, _ := g.PlayerColor(from.id)
	text := b.formatter.Resigned(g.PlayerName(loser), g.PlayerName(loser.Opponent()))
	b.showGame(ctx, g, nil, rooms(g), func(*checkersdto.BoardState) string { return text })
}

func (b *bot) history(ctx context.Context, from sender, args []string) {
	limit := b.cfg.HistoryLimit
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := b.deps.Games.RecentResults(ctx, from.id, limit)
	if err != nil {
		b.reply(from.room, b.formatter.Failure(err))
		return
	}
	b.reply(from.room, b.formatter.History(from.name, from.id, checkerspresenter.ToDTOResults(list)))
}

func (b *bot) move(ctx context.Context, from sender, text string) {
	res, err := b.deps.Games.PlayMoveByRoom(ctx, from.id, from.room, text)
	if err != nil {
		b.reply(from.room, b.formatter.Failure(err))
		return
	}
	if res == nil {
		b.reply(from.room, b.formatter.NoGame())
		return
	}
	if !res.Applied() {
		b.reply(from.room, b.formatter.Rejected(res.Rejected))
		return
	}
	var sel *pvpcheckers.Selection
	if res.Continues {
		sel = &pvpcheckers.Selection{Game: res.Game, Square: res.To, Moves: res.Next}
	}
	dto, err := b.deps.Games.ToDTO(ctx, res.Game, sel)
	if err != nil {
		b.logger.Error("render_failed", zap.String("game_id", res.Game.ID), zap.Error(err))
	}
	summary := checkerspresenter.ToDTOMove(res, dto)
	b.broadcast(rooms(res.Game), b.formatter.Move(summary), dto)
}

func (b *bot) selectSquare(ctx context.Context, from sender, square string) {
	sel, err := b.deps.Games.SelectByRoom(ctx, from.id, from.room, square)
	if err != nil {
		b.reply(from.room, b.formatter.Failure(err))
		return
	}
	if sel == nil {
		b.reply(from.room, b.formatter.NoGame())
		return
	}
	if sel.Rejected != nil && len(sel.Moves) == 0 {
		b.reply(from.room, b.formatter.Rejected(sel.Rejected))
		return
	}
	text := b.formatter.Selection(sel.Square.String(), squareNames(sel.Moves.Destinations()), sel.Moves.Captures())
	if sel.Rejected != nil {
		text = b.formatter.Rejected(sel.Rejected) + "\n" + text
	}
	b.showGame(ctx, sel.Game, sel, []string{from.room}, func(*checkersdto.BoardState) string { return text })
}

func (b *bot) activeGame(ctx context.Context, from sender) (*pvpcheckers.Game, error) {
	g, err := b.deps.Games.GetActiveGameByUserInRoom(ctx, from.id, from.room)
	if err != nil || g != nil {
		return g, err
	}
	return b.deps.Games.GetActiveGameByUser(ctx, from.id)
}

// showGame renders g and posts caption(state) with the board to every room.
func (b *bot) showGame(ctx context.Context, g *pvpcheckers.Game, sel *pvpcheckers.Selection, targets []string, caption func(*checkersdto.BoardState) string) {
	dto, err := b.deps.Games.ToDTO(ctx, g, sel)
	if err != nil {
		b.logger.Error("render_failed", zap.String("game_id", g.ID), zap.Error(err))
		b.reply(targets[0], b.formatter.Failure(err))
		return
	}
	b.broadcast(targets, caption(dto), dto)
}

func (b *bot) broadcast(targets []string, text string, state *checkersdto.BoardState) {
	if err := b.presenter.Broadcast(targets, text, state); err != nil {
		b.logger.Warn("send_failed", zap.Strings("rooms", targets), zap.Error(err))
	}
}

func (b *bot) reply(room, text string) {
	if err := b.presenter.Text(room, text); err != nil {
		b.logger.Warn("send_failed", zap.String("room", room), zap.Error(err))
	}
}

func rooms(g *pvpcheckers.Game) []string {
	return []string{g.OriginRoom, g.ResolveRoom}
}

func orNoGame(err error) error {
	if err != nil {
		return err
	}
	return errors.New("game not found")
}

func squareNames(list []checkers.Square) []string {
	out := make([]string, 0, len(list))
	for _, sq := range list {
		out = append(out, sq.String())
	}
	return out
}
