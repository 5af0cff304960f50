package checkersdto

type Score struct {
	White int
	Black int
}

// BoardState is what the presenter needs to show one game snapshot.
type BoardState struct {
	GameID     string
	Position   string
	Turn       string
	Chain      string
	Selected   string
	Targets    []string
	Movable    []string
	Score      Score
	Status     string
	Winner     string
	WhiteName  string
	BlackName  string
	LastMove   string
	MoveCount  int64
	BoardImage []byte
}
