package pvpchan

import (
	"errors"
	"strings"
	"time"
)

// ChannelState represents the lifecycle of a lobby channel.
type ChannelState string

const (
	StateLobby    ChannelState = "LOBBY"
	StateActive   ChannelState = "ACTIVE"
	StateFinished ChannelState = "FINISHED"
)

// ColorChoice is the creator's side preference.
type ColorChoice string

const (
	ColorWhite  ColorChoice = "white"
	ColorBlack  ColorChoice = "black"
	ColorRandom ColorChoice = "random"
)

func ParseColorChoice(s string) ColorChoice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w", "백":
		return ColorWhite
	case "black", "b", "흑":
		return ColorBlack
	default:
		return ColorRandom
	}
}

// ChannelMeta is stored as JSON in Redis under ch:<code>.
type ChannelMeta struct {
	ID        string       `json:"id"`
	State     ChannelState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`

	CreatorID    string      `json:"creator_id"`
	CreatorName  string      `json:"creator_name"`
	CreatorRoom  string      `json:"creator_room"`
	CreatorColor ColorChoice `json:"creator_color,omitempty"`

	WhiteID   string `json:"white_id,omitempty"`
	WhiteName string `json:"white_name,omitempty"`
	BlackID   string `json:"black_id,omitempty"`
	BlackName string `json:"black_name,omitempty"`

	GameID string `json:"game_id,omitempty"`
}

type MakeResult struct {
	Code string
	Meta *ChannelMeta
}

type JoinResult struct {
	Started bool
	GameID  string
	Meta    *ChannelMeta
}

var (
	ErrInvalidArgs   = errors.New("invalid arguments")
	ErrChannelGone   = errors.New("channel not found or expired")
	ErrChannelActive = errors.New("channel already active")
	ErrFull          = errors.New("channel already has two participants")
	ErrSelfJoin      = errors.New("cannot join your own channel")
	// the player already has an active game bound to this room
	ErrPlayerBusyInRoom = errors.New("player has active game in this room")
	// one open lobby per creator
	ErrCreatorHasLobby = errors.New("user already has a lobby")
)
