package pvpchan

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlChannel = 24 * time.Hour

type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) keyMeta(code string) string         { return "ch:" + strings.TrimSpace(code) }
func (s *Store) keyRooms(code string) string        { return s.keyMeta(code) + ":rooms" }
func (s *Store) keyParticipants(code string) string { return s.keyMeta(code) + ":participants" }
func (s *Store) keyUserIdx(user string) string      { return "ch:index:user:" + strings.TrimSpace(user) }
func (s *Store) keyLobby() string                   { return "ch:lobby" }

func (s *Store) SaveMeta(ctx context.Context, code string, meta *ChannelMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyMeta(code), raw, ttlChannel)
	pipe.Expire(ctx, s.keyRooms(code), ttlChannel)
	pipe.Expire(ctx, s.keyParticipants(code), ttlChannel)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) LoadMeta(ctx context.Context, code string) (*ChannelMeta, error) {
	raw, err := s.rdb.Get(ctx, s.keyMeta(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m ChannelMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	// placeholder written by SetNX before the real meta lands
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}

func (s *Store) AddRoom(ctx context.Context, code, room string) error {
	if strings.TrimSpace(room) == "" {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.keyRooms(code), room)
	pipe.Expire(ctx, s.keyRooms(code), ttlChannel)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Rooms(ctx context.Context, code string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyRooms(code)).Result()
}

func (s *Store) Participants(ctx context.Context, code string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyParticipants(code)).Result()
}

func (s *Store) AddParticipant(ctx context.Context, code, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.keyParticipants(code), userID)
	pipe.Expire(ctx, s.keyParticipants(code), ttlChannel)
	pipe.SAdd(ctx, s.keyUserIdx(userID), code)
	pipe.Expire(ctx, s.keyUserIdx(userID), ttlChannel)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) CodesByUser(ctx context.Context, userID string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.keyUserIdx(userID)).Result()
}

// codeGen returns `CH-` + 6 upper alnum.
func codeGen() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return fmt.Sprintf("CH-%s", string(b)), nil
}

func (s *Store) AddLobby(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.keyLobby(), code)
	pipe.Expire(ctx, s.keyLobby(), ttlChannel)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) RemoveLobby(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	return s.rdb.SRem(ctx, s.keyLobby(), code).Err()
}

// ListLobby returns waiting channels, oldest first. Expired codes are pruned
// from the index.
func (s *Store) ListLobby(ctx context.Context) ([]*ChannelMeta, error) {
	codes, err := s.rdb.SMembers(ctx, s.keyLobby()).Result()
	if err != nil {
		return nil, err
	}
	var out []*ChannelMeta
	for _, c := range codes {
		m, err := s.LoadMeta(ctx, c)
		if err != nil {
			return nil, err
		}
		if m == nil {
			_ = s.RemoveLobby(ctx, c)
			continue
		}
		if m.State != StateLobby {
			continue
		}
		out = append(out, m)
	}
	sortByCreated(out)
	return out, nil
}
