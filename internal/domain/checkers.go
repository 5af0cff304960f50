package domain

import "time"

// CheckersResult is a finished PvP game as stored by the result repository.
type CheckersResult struct {
	GameID        string
	WhiteID       string
	WhiteName     string
	BlackID       string
	BlackName     string
	OriginRoom    string
	ResolveRoom   string
	Result        string
	ResultMethod  string
	FinalPosition string
	WhiteLeft     int
	BlackLeft     int
	StartedAt     time.Time
	EndedAt       time.Time
	Duration      time.Duration
}
