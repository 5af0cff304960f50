package checkers

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSquareNotation(t *testing.T) {
	tests := []struct {
		text string
		want Square
	}{
		{"a1", sq(7, 0)},
		{"h8", sq(0, 7)},
		{"c3", sq(5, 2)},
		{"D4", sq(4, 3)},
		{" e5 ", sq(3, 4)},
	}
	for _, tt := range tests {
		got, err := ParseSquare(tt.text)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.text, err)
		}
		if got != tt.want {
			t.Fatalf("ParseSquare(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
	if sq(5, 2).String() != "c3" {
		t.Fatalf("String() = %q, want c3", sq(5, 2).String())
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "c33", "3c"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Fatalf("ParseSquare(%q) err = %v, want ErrInvalidSquare", bad, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		text     string
		from, to Square
	}{
		{"c3-d4", sq(5, 2), sq(4, 3)},
		{"c3:e5", sq(5, 2), sq(3, 4)},
		{"C3xE5", sq(5, 2), sq(3, 4)},
	}
	for _, tt := range tests {
		from, to, err := ParseMove(tt.text)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", tt.text, err)
		}
		if from != tt.from || to != tt.to {
			t.Fatalf("ParseMove(%q) = %v %v", tt.text, from, to)
		}
	}
	if _, _, err := ParseMove("c3d4"); err == nil {
		t.Fatalf("expected error without separator")
	}
	if _, _, err := ParseMove("c3-z9"); !errors.Is(err, ErrInvalidSquare) {
		t.Fatalf("err = %v, want ErrInvalidSquare", err)
	}
	if got := FormatMove(sq(5, 2), sq(3, 4), []Square{sq(4, 3)}); got != "c3:e5" {
		t.Fatalf("FormatMove capture = %q", got)
	}
	if got := FormatMove(sq(5, 2), sq(4, 3), nil); got != "c3-d4" {
		t.Fatalf("FormatMove quiet = %q", got)
	}
	if !LooksLikeMove("c3-d4") || LooksLikeMove("c3") {
		t.Fatalf("LooksLikeMove misclassified input")
	}
}

func TestInitialPositionText(t *testing.T) {
	b := InitialBoard()
	want := ".b.b.b.b/b.b.b.b./.b.b.b.b/......../......../w.w.w.w./.w.w.w.w/w.w.w.w."
	if got := b.Position(); got != want {
		t.Fatalf("Position() = %q\nwant %q", got, want)
	}
	parsed, err := ParsePosition(want)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if parsed != b {
		t.Fatalf("ParsePosition round trip mismatch")
	}
}

func TestParsePositionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"short", "......../........"},
		{"light square", "b......./......../......../......../......../......../......../........"},
		{"bad rune", ".x....../......../......../......../......../......../......../........"},
		{"long row", "........./......../......../......../......../......../......../........"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePosition(tt.text); !errors.Is(err, ErrInvalidPosition) {
				t.Fatalf("err = %v, want ErrInvalidPosition", err)
			}
		})
	}
}

func TestSnapshotRoundTripKeepsChain(t *testing.T) {
	g := setup(t, White, map[Square]Piece{
		sq(5, 2): WhiteMan,
		sq(4, 3): BlackMan,
		sq(2, 5): BlackMan,
		sq(0, 1): BlackMan,
	})
	if _, err := g.Play(sq(5, 2), sq(3, 4)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var restored Game
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("Unmarshal %s: %v", raw, err)
	}
	pinned, ok := restored.Chain()
	if !ok || pinned != sq(3, 4) {
		t.Fatalf("restored chain = %v,%v", pinned, ok)
	}
	if restored.Turn() != White || restored.Remaining(Black) != 2 || restored.Remaining(White) != 1 {
		t.Fatalf("restored counters wrong: turn=%v %d/%d", restored.Turn(), restored.Remaining(White), restored.Remaining(Black))
	}
	diffMoves(t, g.LegalMoves(sq(3, 4)), restored.LegalMoves(sq(3, 4)))
}

func TestRestoreRejectsImpossibleChain(t *testing.T) {
	s := NewGame().Snapshot()
	s.Chain = "c3"
	if _, err := Restore(s); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("err = %v, want ErrInvalidPosition", err)
	}
}

func TestNewGameFromBoardValidation(t *testing.T) {
	var b Board
	b[0][1] = WhiteMan
	b[7][0] = BlackKing
	if _, err := NewGameFromBoard(b, White); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("unpromoted man on back rank: err = %v", err)
	}
	b[0][1] = WhiteKing
	g, err := NewGameFromBoard(b, Black)
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	if g.Remaining(White) != 1 || g.Remaining(Black) != 1 || g.Turn() != Black {
		t.Fatalf("unexpected counters %d/%d turn %v", g.Remaining(White), g.Remaining(Black), g.Turn())
	}
}

func TestRestoreWinner(t *testing.T) {
	var b Board
	b[4][3] = WhiteKing
	s := Snapshot{Position: b.Position(), Turn: Black, Winner: "white"}
	g, err := Restore(s)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if w, over := g.Winner(); !over || w != White {
		t.Fatalf("Winner() = %v,%v, want white", w, over)
	}
	if got := g.Snapshot(); got != s {
		t.Fatalf("Snapshot() = %+v, want %+v", got, s)
	}

	s.Winner = "black"
	if _, err := Restore(s); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("winner without pieces: err = %v, want ErrInvalidPosition", err)
	}

	s.Winner = ""
	g, err = Restore(s)
	if err != nil {
		t.Fatalf("Restore without winner: %v", err)
	}
	if _, over := g.Winner(); over {
		t.Fatalf("restored position without a winner must still be playable")
	}
}
