package checkers

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of a Game. Remaining counts are not
// stored; they always equal the pieces on the board.
type Snapshot struct {
	Position string `json:"position"`
	Turn     Color  `json:"turn"`
	Chain    string `json:"chain,omitempty"`
	Winner   string `json:"winner,omitempty"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{Position: g.board.Position(), Turn: g.turn}
	if g.chain {
		s.Chain = g.pinned.String()
	}
	if g.over {
		s.Winner = g.winner.String()
	}
	return s
}

// Restore rebuilds a game from a snapshot.
func Restore(s Snapshot) (*Game, error) {
	b, err := ParsePosition(s.Position)
	if err != nil {
		return nil, err
	}
	g, err := NewGameFromBoard(b, s.Turn)
	if err != nil {
		return nil, err
	}
	if s.Chain != "" {
		sq, err := ParseSquare(s.Chain)
		if err != nil {
			return nil, fmt.Errorf("%w: chain: %v", ErrInvalidPosition, err)
		}
		p := g.board.At(sq)
		if p == NoPiece || p.Color() != g.turn || len(g.captures(sq, p)) == 0 {
			return nil, fmt.Errorf("%w: chain square %s cannot capture", ErrInvalidPosition, sq)
		}
		g.chain, g.pinned = true, sq
	}
	if s.Winner != "" {
		w, err := ParseColor(s.Winner)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
		}
		if g.left[w] == 0 {
			return nil, fmt.Errorf("%w: winner %s has no pieces", ErrInvalidPosition, w)
		}
		g.winner, g.over = w, true
	}
	return g, nil
}

func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

func (g *Game) UnmarshalJSON(b []byte) error {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	restored, err := Restore(s)
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}
