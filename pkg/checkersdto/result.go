package checkersdto

import "time"

type GameResult struct {
	GameID        string
	WhiteID       string
	WhiteName     string
	BlackID       string
	BlackName     string
	Result        string
	ResultMethod  string
	FinalPosition string
	WhiteLeft     int
	BlackLeft     int
	StartedAt     time.Time
	EndedAt       time.Time
	Duration      time.Duration
}
