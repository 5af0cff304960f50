package pvpcheckers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/cheese-checkers/internal/domain"
)

// memRepository is a development-only ResultStore used when no database is
// configured. Results live for the process lifetime.
type memRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.CheckersResult
	byUser map[string][]string
}

func NewMemoryRepository() ResultStore {
	return &memRepository{
		byID:   make(map[string]*domain.CheckersResult),
		byUser: make(map[string][]string),
	}
}

func (m *memRepository) SaveResult(_ context.Context, g *Game, method string) error {
	rec := resultRecord(g, method)
	if rec == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[rec.GameID]; !exists {
		for _, u := range []string{rec.WhiteID, rec.BlackID} {
			m.byUser[u] = append(m.byUser[u], rec.GameID)
		}
	}
	m.byID[rec.GameID] = rec
	return nil
}

func (m *memRepository) RecentResults(_ context.Context, userID string, limit int) ([]*domain.CheckersResult, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byUser[strings.TrimSpace(userID)]
	out := make([]*domain.CheckersResult, 0, len(ids))
	for _, id := range ids {
		if rec, ok := m.byID[id]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
