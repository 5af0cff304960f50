package checkersdto

// MoveSummary describes one applied step for chat output.
type MoveSummary struct {
	Mover     string
	MoverName string
	Move      string
	Captured  []string
	Promoted  bool
	// Continues is set when the same piece must capture again from ChainFrom.
	Continues bool
	ChainFrom string
	Next      []string
	Finished  bool
	Winner    string
	NextName  string
	State     *BoardState
}

// LobbyEntry is one open lobby.
type LobbyEntry struct {
	Code        string
	CreatorName string
	Color       string
}
