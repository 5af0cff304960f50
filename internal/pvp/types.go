package pvp

import (
	"strings"
	"time"
)

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

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

type Challenge struct {
	ID             string
	OriginRoom     string
	ResolveRoom    string
	ChallengerID   string
	ChallengerName string
	TargetID       string
	TargetName     string
	Color          ColorChoice
	CreatedAt      time.Time
	Status         Status
}
