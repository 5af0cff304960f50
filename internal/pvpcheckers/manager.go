package pvpcheckers

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"
	"github.com/park285/cheese-checkers/internal/obslog"
	svc "github.com/park285/cheese-checkers/internal/service/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultGameTTL = 24 * time.Hour

var (
	ErrNotInitialized  = errors.New("pvp manager not initialized")
	ErrInvalidPlayers  = errors.New("invalid participants")
	ErrGameNotFound    = errors.New("game not found")
	ErrNotActive       = errors.New("game no longer active")
	ErrNotInRoom       = errors.New("game not in room")
	ErrCorruptGame     = errors.New("game record has no engine state")
	errRejected        = errors.New("rejected")
	errResultStoreNone = errors.New("result store not attached")
)

type Manager struct {
	rdb      *redis.Client
	ttl      time.Duration
	renderer svc.BoardRenderer
	repo     ResultStore
}

func NewManager(redisURL string) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for PvP manager")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewManagerWithClient(rdb, DefaultGameTTL), nil
}

// NewManagerWithClient wraps an existing client. A non-positive ttl falls
// back to DefaultGameTTL.
func NewManagerWithClient(rdb *redis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultGameTTL
	}
	return &Manager{rdb: rdb, ttl: ttl, renderer: svc.NewBoardRenderer()}
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// Client exposes the underlying Redis client so the lobby can share it.
func (m *Manager) Client() *redis.Client {
	if m == nil {
		return nil
	}
	return m.rdb
}

// AttachRepository wires a store for persisting finished games.
func (m *Manager) AttachRepository(r ResultStore) {
	if m != nil {
		m.repo = r
	}
}

// CreateGameFromChallenge starts a game between two users. colorChoice is
// "white"/"black" from the challenger's point of view; anything else draws
// sides at random.
func (m *Manager) CreateGameFromChallenge(ctx context.Context, originRoom, resolveRoom, challengerID, challengerName, targetID, targetName, colorChoice string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	challengerID, targetID = strings.TrimSpace(challengerID), strings.TrimSpace(targetID)
	if challengerID == "" || targetID == "" || challengerID == targetID {
		return nil, ErrInvalidPlayers
	}

	whiteID, whiteName := challengerID, challengerName
	blackID, blackName := targetID, targetName
	swap := false
	switch strings.ToLower(strings.TrimSpace(colorChoice)) {
	case "white", "w", "백":
	case "black", "b", "흑":
		swap = true
	default:
		if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
			swap = true
		}
	}
	if swap {
		whiteID, whiteName, blackID, blackName = blackID, blackName, whiteID, whiteName
	}

	now := time.Now()
	g := &Game{
		ID:          uuid.NewString(),
		State:       checkers.NewGame(),
		Status:      StatusActive,
		WhiteID:     whiteID,
		WhiteName:   displayName(whiteName, whiteID),
		BlackID:     blackID,
		BlackName:   displayName(blackName, blackID),
		OriginRoom:  strings.TrimSpace(originRoom),
		ResolveRoom: strings.TrimSpace(resolveRoom),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil {
		return nil, err
	}
	obslog.L().Info("pvp_game_create",
		zap.String("game_id", g.ID),
		zap.String("origin_room", g.OriginRoom),
		zap.String("resolve_room", g.ResolveRoom),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	return g, nil
}

// GetActiveGameByUser returns the most recently updated active game for a
// user, or nil.
func (m *Manager) GetActiveGameByUser(ctx context.Context, userID string) (*Game, error) {
	return m.latestActive(ctx, userID, func(*Game) bool { return true })
}

// GetActiveGameByUserInRoom is GetActiveGameByUser restricted to games bound
// to room.
func (m *Manager) GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
	if strings.TrimSpace(room) == "" {
		return nil, nil
	}
	return m.latestActive(ctx, userID, func(g *Game) bool { return g.InRoom(room) })
}

func (m *Manager) latestActive(ctx context.Context, userID string, keep func(*Game) bool) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	for _, id := range ids {
		g, err := m.get(ctx, id)
		if err != nil {
			obslog.L().Warn("pvp_game_load_error", zap.String("game_id", id), zap.Error(err))
			continue
		}
		if g == nil {
			// expired record, drop the stale index entry
			_ = m.rdb.SRem(ctx, idxUserKey(userID), id).Err()
			continue
		}
		if g.Status == StatusActive && keep(g) {
			list = append(list, g)
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// LoadGame returns the game by ID, or nil when it expired.
func (m *Manager) LoadGame(ctx context.Context, id string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	return m.get(ctx, id)
}

// Select answers which moves the piece on square has for userID in their
// active game. It never changes the game.
func (m *Manager) Select(ctx context.Context, userID, square string) (*Selection, error) {
	return m.selectIn(ctx, userID, "", square)
}

// SelectByRoom is Select restricted to the user's game in roomID.
func (m *Manager) SelectByRoom(ctx context.Context, userID, roomID, square string) (*Selection, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("room required")
	}
	return m.selectIn(ctx, userID, roomID, square)
}

func (m *Manager) selectIn(ctx context.Context, userID, room, square string) (*Selection, error) {
	g, err := m.findGame(ctx, userID, room)
	if err != nil || g == nil {
		return nil, err
	}
	sel := &Selection{Game: g}
	sq, err := checkers.ParseSquare(square)
	if err != nil {
		sel.Rejected = reject(checkersdto.CodeBadNotation, err.Error())
		return sel, nil
	}
	sel.Square = sq

	color, ok := g.PlayerColor(userID)
	if !ok {
		sel.Rejected = reject(checkersdto.CodeNotAPlayer, "user not in game")
		return sel, nil
	}
	if g.State.Turn() != color {
		sel.Rejected = reject(checkersdto.CodeNotYourTurn, "opponent to move")
		return sel, nil
	}
	if pinned, chain := g.State.Chain(); chain && pinned != sq {
		sel.Rejected = reject(checkersdto.CodeChainPending, "capture must continue from "+pinned.String())
		sel.Square = pinned
		sel.Moves = g.State.LegalMoves(pinned)
		return sel, nil
	}
	sel.Moves = g.State.LegalMoves(sq)
	return sel, nil
}

// PlayMove applies one step for the user's most recent active game.
func (m *Manager) PlayMove(ctx context.Context, userID, moveText string) (*MoveResult, error) {
	return m.play(ctx, userID, "", moveText)
}

// PlayMoveByRoom is PlayMove restricted to the user's game in roomID, so a
// user playing in several rooms never moves in the wrong one.
func (m *Manager) PlayMoveByRoom(ctx context.Context, userID, roomID, moveText string) (*MoveResult, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("room required")
	}
	return m.play(ctx, userID, roomID, moveText)
}

func (m *Manager) play(ctx context.Context, userID, room, moveText string) (*MoveResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidPlayers
	}
	g, err := m.findGame(ctx, userID, room)
	if err != nil || g == nil {
		return nil, err
	}
	res := &MoveResult{Game: g}

	from, to, err := checkers.ParseMove(moveText)
	if err != nil {
		res.Rejected = reject(checkersdto.CodeBadNotation, err.Error())
		return res, nil
	}
	res.From, res.To = from, to

	gameK := gameKey(g.ID)
	seen := g.Version
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if cur.Status != StatusActive {
			return ErrNotActive
		}
		if cur.Version != seen {
			return redis.TxFailedErr
		}
		if room != "" && !cur.InRoom(room) {
			return ErrNotInRoom
		}
		color, ok := cur.PlayerColor(userID)
		if !ok {
			res.Rejected = reject(checkersdto.CodeNotAPlayer, "user not in game")
			return errRejected
		}
		if cur.State.Turn() != color {
			res.Rejected = reject(checkersdto.CodeNotYourTurn, "opponent to move")
			return errRejected
		}

		before := cur.State.Piece(from)
		captured := cur.State.LegalMoves(from)[to]
		if _, err := cur.State.Play(from, to); err != nil {
			res.Rejected = reject(checkersdto.CodeIllegalMove, err.Error())
			if pinned, chain := cur.State.Chain(); chain {
				res.Rejected = reject(checkersdto.CodeChainPending, "capture must continue from "+pinned.String())
				res.Next = cur.State.LegalMoves(pinned)
			}
			return errRejected
		}

		res.Mover = color
		res.Captured = captured
		res.Promoted = !before.IsKing() && cur.State.Piece(to).IsKing()
		if pinned, chain := cur.State.Chain(); chain {
			res.Continues = true
			res.Next = cur.State.LegalMoves(pinned)
		}
		if winner, over := cur.State.Winner(); over {
			cur.Status = StatusFinished
			cur.Winner = cur.PlayerID(winner)
			cur.Outcome = winner.String()
			res.Finished = true
		}
		cur.Version++
		cur.LastFrom, cur.LastTo = from.String(), to.String()
		cur.UpdatedAt = time.Now()

		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, gameK, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		res.Game = cur
		return nil
	}, gameK)

	switch {
	case err == nil:
	case errors.Is(err, errRejected):
		return res, nil
	case errors.Is(err, redis.TxFailedErr):
		res.Rejected = &checkersdto.DomainError{Code: checkersdto.CodeConflict, Message: "concurrent update", Retryable: true}
		return res, nil
	default:
		return nil, err
	}

	g = res.Game
	obslog.L().Info("pvp_move",
		zap.String("game_id", g.ID),
		zap.String("room_id", strings.TrimSpace(room)),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("move", checkers.FormatMove(from, to, res.Captured)),
		zap.Int("captured", len(res.Captured)),
		zap.Bool("chain", res.Continues),
		zap.Bool("promoted", res.Promoted),
		zap.Int64("version", g.Version),
		zap.String("status", string(g.Status)),
	)
	if res.Finished {
		_ = m.persistIfFinal(ctx, g, "no_pieces")
	}
	return res, nil
}

// Resign ends the user's most recent active game in the opponent's favor.
func (m *Manager) Resign(ctx context.Context, userID string) (*Game, error) {
	return m.resign(ctx, userID, "")
}

// ResignByRoom resigns only the user's game bound to roomID.
func (m *Manager) ResignByRoom(ctx context.Context, userID, roomID string) (*Game, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("room required")
	}
	return m.resign(ctx, userID, roomID)
}

func (m *Manager) resign(ctx context.Context, userID, room string) (*Game, error) {
	g, err := m.findGame(ctx, userID, room)
	if err != nil || g == nil {
		return nil, err
	}
	gameK := gameKey(g.ID)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := loadTx(ctx, tx, gameK)
		if err != nil {
			return err
		}
		if cur.Status != StatusActive {
			return ErrNotActive
		}
		if room != "" && !cur.InRoom(room) {
			return ErrNotInRoom
		}
		color, ok := cur.PlayerColor(userID)
		if !ok {
			return ErrInvalidPlayers
		}
		cur.Status = StatusResigned
		cur.Winner = cur.PlayerID(color.Opponent())
		cur.Outcome = color.Opponent().String()
		cur.Version++
		cur.UpdatedAt = time.Now()
		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, gameK, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = cur
		return nil
	}, gameK)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrNotActive
		}
		return nil, err
	}
	obslog.L().Info("pvp_resign",
		zap.String("game_id", g.ID),
		zap.String("resigner", strings.TrimSpace(userID)),
		zap.String("room_id", strings.TrimSpace(room)),
		zap.String("winner", g.Winner),
	)
	_ = m.persistIfFinal(ctx, g, "resignation")
	return g, nil
}

// RecentResults lists the user's finished games from the attached store.
func (m *Manager) RecentResults(ctx context.Context, userID string, limit int) ([]*domain.CheckersResult, error) {
	if m == nil || m.repo == nil {
		return nil, errResultStoreNone
	}
	return m.repo.RecentResults(ctx, userID, limit)
}

func (m *Manager) findGame(ctx context.Context, userID, room string) (*Game, error) {
	if strings.TrimSpace(room) == "" {
		return m.GetActiveGameByUser(ctx, userID)
	}
	return m.GetActiveGameByUserInRoom(ctx, userID, room)
}

func reject(code, msg string) *checkersdto.DomainError {
	return &checkersdto.DomainError{Code: code, Message: msg}
}

func displayName(name, id string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return id
}

func loadTx(ctx context.Context, tx *redis.Tx, key string) (*Game, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeGame(raw, key)
}

func decodeGame(raw []byte, label string) (*Game, error) {
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", label, err)
	}
	if g.State == nil {
		return nil, fmt.Errorf("decode game %s: %w", label, ErrCorruptGame)
	}
	return &g, nil
}

func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeGame(raw, id)
}

func (m *Manager) indexParticipants(ctx context.Context, id string, users ...string) error {
	pipe := m.rdb.TxPipeline()
	for _, u := range users {
		if strings.TrimSpace(u) == "" {
			continue
		}
		key := idxUserKey(u)
		pipe.SAdd(ctx, key, id)
		pipe.Expire(ctx, key, m.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func gameKey(id string) string        { return "pvp:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "pvp:index:user:" + strings.TrimSpace(userID) }

// ParseRedisURL turns redis://[:pass@]host:port/db into client options.
// rediss:// enables TLS.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()}
	}
	return opts, nil
}

// persistIfFinal saves the final game result to the store if one is attached.
func (m *Manager) persistIfFinal(ctx context.Context, g *Game, method string) error {
	if m == nil || m.repo == nil || g == nil || g.Status == StatusActive {
		return nil
	}
	if err := m.repo.SaveResult(ctx, g, method); err != nil {
		obslog.L().Error("pvp_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("pvp_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", method))
	return nil
}
