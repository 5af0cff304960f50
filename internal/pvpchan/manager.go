package pvpchan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/park285/cheese-checkers/internal/pvpcheckers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Manager runs code-based lobbies. The second participant to join starts a
// game through the PvP manager; both rooms stay bound to the channel.
type Manager struct {
	rdb   *redis.Client
	store *Store
	pvp   *pvpcheckers.Manager
}

func NewManager(rdb *redis.Client, pvp *pvpcheckers.Manager) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), pvp: pvp}
}

func (m *Manager) Make(ctx context.Context, room, userID, userName string, color ColorChoice) (*MakeResult, error) {
	room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
	if room == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if g, _ := m.pvp.GetActiveGameByUserInRoom(ctx, userID, room); g != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if open, err := m.openLobbyOf(ctx, userID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, ErrCreatorHasLobby
	}

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		ok, err := m.rdb.SetNX(ctx, m.store.keyMeta(code), []byte("{}"), ttlChannel).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		meta := &ChannelMeta{
			ID:           code,
			State:        StateLobby,
			CreatedAt:    time.Now(),
			CreatorID:    userID,
			CreatorName:  strings.TrimSpace(userName),
			CreatorRoom:  room,
			CreatorColor: color,
		}
		if err := m.store.SaveMeta(ctx, code, meta); err != nil {
			return nil, err
		}
		if err := m.store.AddRoom(ctx, code, room); err != nil {
			return nil, err
		}
		if err := m.store.AddParticipant(ctx, code, userID); err != nil {
			return nil, err
		}
		if err := m.store.AddLobby(ctx, code); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", code), zap.String("room", room), zap.String("creator_id", userID))
		return &MakeResult{Code: code, Meta: meta}, nil
	}
	return nil, fmt.Errorf("failed to allocate channel code")
}

func (m *Manager) Join(ctx context.Context, room, code, userID, userName string) (*JoinResult, error) {
	room, code, userID = strings.TrimSpace(room), strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(userID)
	if room == "" || code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrChannelGone
	}
	if meta.State != StateLobby {
		return nil, ErrChannelActive
	}
	if meta.CreatorID == userID {
		return nil, ErrSelfJoin
	}
	if busy, _ := m.pvp.GetActiveGameByUserInRoom(ctx, userID, room); busy != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if busy, _ := m.pvp.GetActiveGameByUserInRoom(ctx, meta.CreatorID, meta.CreatorRoom); busy != nil {
		return nil, ErrPlayerBusyInRoom
	}

	partKey := m.store.keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cnt, err := tx.SCard(ctx, partKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cnt >= 2 {
			return ErrFull
		}
		pipe := tx.TxPipeline()
		pipe.SAdd(ctx, partKey, userID)
		pipe.Expire(ctx, partKey, ttlChannel)
		pipe.SAdd(ctx, m.store.keyRooms(code), room)
		pipe.Expire(ctx, m.store.keyRooms(code), ttlChannel)
		pipe.SAdd(ctx, m.store.keyUserIdx(userID), code)
		pipe.Expire(ctx, m.store.keyUserIdx(userID), ttlChannel)
		_, err = pipe.Exec(ctx)
		return err
	}, partKey)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			err = ErrFull
		}
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	g, err := m.pvp.CreateGameFromChallenge(ctx, meta.CreatorRoom, room, meta.CreatorID, meta.CreatorName, userID, userName, string(meta.CreatorColor))
	if err != nil {
		return nil, err
	}
	meta.WhiteID, meta.WhiteName = g.WhiteID, g.WhiteName
	meta.BlackID, meta.BlackName = g.BlackID, g.BlackName
	meta.State = StateActive
	meta.GameID = g.ID
	if err := m.store.SaveMeta(ctx, code, meta); err != nil {
		return nil, err
	}
	_ = m.store.RemoveLobby(ctx, code)
	obslog.L().Info("lobby_start_game",
		zap.String("code", code),
		zap.String("game_id", g.ID),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	return &JoinResult{Started: true, GameID: g.ID, Meta: meta}, nil
}

func (m *Manager) Rooms(ctx context.Context, code string) ([]string, error) {
	return m.store.Rooms(ctx, code)
}

// RoomsByUserAndGame finds the rooms of the user's channel bound to gameID.
func (m *Manager) RoomsByUserAndGame(ctx context.Context, userID, gameID string) ([]string, error) {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		meta, _ := m.store.LoadMeta(ctx, c)
		if meta != nil && meta.GameID == gameID {
			return m.store.Rooms(ctx, c)
		}
	}
	return nil, nil
}

// ListLobby returns waiting channels for listing.
func (m *Manager) ListLobby(ctx context.Context) ([]*ChannelMeta, error) {
	return m.store.ListLobby(ctx)
}

func (m *Manager) openLobbyOf(ctx context.Context, userID string) (*ChannelMeta, error) {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		meta, err := m.store.LoadMeta(ctx, c)
		if err != nil {
			return nil, err
		}
		if meta != nil && meta.State == StateLobby && meta.CreatorID == userID {
			return meta, nil
		}
	}
	return nil, nil
}

func sortByCreated(list []*ChannelMeta) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
}
