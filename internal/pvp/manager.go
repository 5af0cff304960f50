package pvp

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrSelfChallenge    = errors.New("cannot challenge yourself")
	ErrAlreadyPending   = errors.New("target already has a pending challenge")
	ErrNoPendingForUser = errors.New("no pending challenge for target user")
)

// Manager tracks challenges in memory. With auto-accept on, a challenge is
// resolved in its origin room the moment it is created.
type Manager struct {
	mu         sync.RWMutex
	byTarget   map[string][]*Challenge
	autoAccept bool
}

func NewManager(autoAccept bool) *Manager {
	return &Manager{byTarget: make(map[string][]*Challenge), autoAccept: autoAccept}
}

func (m *Manager) CreateChallenge(originRoom, challengerID, challengerName, targetID, targetName string, color ColorChoice) (*Challenge, error) {
	originRoom, challengerID, targetID = strings.TrimSpace(originRoom), strings.TrimSpace(challengerID), strings.TrimSpace(targetID)
	if originRoom == "" || challengerID == "" || targetID == "" {
		return nil, ErrInvalidArgs
	}
	if challengerID == targetID {
		return nil, ErrSelfChallenge
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byTarget[targetID]
	if latestPendingIndex(list) >= 0 {
		return nil, ErrAlreadyPending
	}
	ch := &Challenge{
		ID:             uuid.NewString(),
		OriginRoom:     originRoom,
		ChallengerID:   challengerID,
		ChallengerName: strings.TrimSpace(challengerName),
		TargetID:       targetID,
		TargetName:     strings.TrimSpace(targetName),
		Color:          color,
		CreatedAt:      time.Now(),
		Status:         StatusPending,
	}
	if m.autoAccept {
		ch.Status = StatusAccepted
		ch.ResolveRoom = originRoom
	}
	m.byTarget[targetID] = append(list, ch)
	return ch, nil
}

// Pending returns the latest pending challenge addressed to targetID.
func (m *Manager) Pending(targetID string) *Challenge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byTarget[strings.TrimSpace(targetID)]
	if idx := latestPendingIndex(list); idx >= 0 {
		cp := *list[idx]
		return &cp
	}
	return nil
}

func (m *Manager) Accept(targetID, acceptRoom string) (*Challenge, error) {
	return m.resolve(targetID, acceptRoom, StatusAccepted)
}

func (m *Manager) Decline(targetID, declineRoom string) (*Challenge, error) {
	return m.resolve(targetID, declineRoom, StatusDeclined)
}

func (m *Manager) resolve(targetID, room string, status Status) (*Challenge, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, ErrInvalidArgs
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.byTarget[targetID]
	idx := latestPendingIndex(list)
	if idx < 0 {
		return nil, ErrNoPendingForUser
	}
	ch := list[idx]
	ch.Status = status
	ch.ResolveRoom = room
	cp := *ch
	return &cp, nil
}

func latestPendingIndex(list []*Challenge) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Status == StatusPending {
			return i
		}
	}
	return -1
}
