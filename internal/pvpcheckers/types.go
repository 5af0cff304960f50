package pvpcheckers

import (
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

// Status represents a PvP game lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
)

// Game is the persisted state of a PvP match. State carries the full engine
// snapshot, including an unfinished capture chain.
type Game struct {
	ID          string         `json:"id"`
	State       *checkers.Game `json:"state"`
	Version     int64          `json:"version"`
	Status      Status         `json:"status"`
	WhiteID     string         `json:"white_id"`
	WhiteName   string         `json:"white_name"`
	BlackID     string         `json:"black_id"`
	BlackName   string         `json:"black_name"`
	OriginRoom  string         `json:"origin_room"`
	ResolveRoom string         `json:"resolve_room"`
	LastFrom    string         `json:"last_from,omitempty"`
	LastTo      string         `json:"last_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Winner      string         `json:"winner,omitempty"`
	Outcome     string         `json:"outcome,omitempty"`
}

// PlayerColor reports which side userID plays.
func (g *Game) PlayerColor(userID string) (checkers.Color, bool) {
	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return checkers.White, false
	case g.WhiteID == userID:
		return checkers.White, true
	case g.BlackID == userID:
		return checkers.Black, true
	}
	return checkers.White, false
}

func (g *Game) PlayerID(c checkers.Color) string {
	if c == checkers.White {
		return g.WhiteID
	}
	return g.BlackID
}

func (g *Game) PlayerName(c checkers.Color) string {
	if c == checkers.White {
		return g.WhiteName
	}
	return g.BlackName
}

func (g *Game) OpponentID(userID string) string {
	c, ok := g.PlayerColor(userID)
	if !ok {
		return ""
	}
	return g.PlayerID(c.Opponent())
}

// InRoom reports whether the game is bound to room on either side.
func (g *Game) InRoom(room string) bool {
	room = strings.TrimSpace(room)
	return room != "" && (g.OriginRoom == room || g.ResolveRoom == room)
}

// Selection is the answer to a square query for the acting player.
type Selection struct {
	Game     *Game
	Square   checkers.Square
	Moves    checkers.Moves
	Rejected *checkersdto.DomainError
}

// MoveResult describes one applied step, or why it was refused.
type MoveResult struct {
	Game     *Game
	Mover    checkers.Color
	From     checkers.Square
	To       checkers.Square
	Captured []checkers.Square
	Promoted bool
	// Continues is set while the same piece must keep capturing; Next holds
	// its legal continuations.
	Continues bool
	Next      checkers.Moves
	Finished  bool
	Rejected  *checkersdto.DomainError
}

// Applied reports whether the step changed the game.
func (r *MoveResult) Applied() bool { return r != nil && r.Rejected == nil }
