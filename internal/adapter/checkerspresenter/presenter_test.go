package checkerspresenter

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/pvpchan"
	"github.com/park285/cheese-checkers/internal/pvpcheckers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

type sent struct {
	kind, room, body string
}

func recordingPresenter(out *[]sent) *Presenter {
	return NewPresenter(
		func(room, message string) error { *out = append(*out, sent{"text", room, message}); return nil },
		func(room, img string) error { *out = append(*out, sent{"image", room, img}); return nil },
	)
}

type fixedPrefix string

func (p fixedPrefix) Prefix() string { return string(p) }

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewFormatter(fixedPrefix("!"), cat)
}

func sq(t *testing.T, s string) checkers.Square {
	t.Helper()
	v, err := checkers.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return v
}

func TestBoardSendsTextThenImage(t *testing.T) {
	var out []sent
	p := recordingPresenter(&out)
	state := &checkersdto.BoardState{BoardImage: []byte{1, 2, 3}}

	if err := p.Board("room", "hello", state); err != nil {
		t.Fatalf("Board: %v", err)
	}
	want := []sent{
		{"text", "room", "hello"},
		{"image", "room", base64.StdEncoding.EncodeToString([]byte{1, 2, 3})},
	}
	if diff := cmp.Diff(want, out, cmp.AllowUnexported(sent{})); diff != "" {
		t.Fatalf("sent (-want +got):\n%s", diff)
	}
}

func TestBoardSkipsBlankTextAndMissingImage(t *testing.T) {
	var out []sent
	p := recordingPresenter(&out)
	if err := p.Board("room", "  ", &checkersdto.BoardState{}); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected nothing sent, got %v", out)
	}
}

func TestBroadcastDedupsRoomsAndStopsOnError(t *testing.T) {
	var out []sent
	p := recordingPresenter(&out)
	if err := p.Broadcast([]string{"a", "a", "", "b"}, "msg", nil); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(out) != 2 || out[0].room != "a" || out[1].room != "b" {
		t.Fatalf("unexpected sends %v", out)
	}

	boom := errors.New("boom")
	calls := 0
	failing := NewPresenter(func(string, string) error { calls++; return boom }, nil)
	if err := failing.Broadcast([]string{"a", "b"}, "msg", nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestToDTOMoveChainContinuation(t *testing.T) {
	g := &pvpcheckers.Game{ID: "g1", State: checkers.NewGame(), WhiteName: "alice", BlackName: "bob"}
	r := &pvpcheckers.MoveResult{
		Game:      g,
		Mover:     checkers.White,
		From:      sq(t, "c3"),
		To:        sq(t, "e5"),
		Captured:  []checkers.Square{sq(t, "d4")},
		Continues: true,
		Next:      checkers.Moves{sq(t, "g7"): {sq(t, "f6")}},
	}
	got := ToDTOMove(r, nil)
	want := &checkersdto.MoveSummary{
		Mover:     "white",
		MoverName: "alice",
		Move:      "c3:e5",
		Captured:  []string{"d4"},
		Continues: true,
		ChainFrom: "e5",
		Next:      []string{"g7"},
		NextName:  "alice",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ToDTOMove (-want +got):\n%s", diff)
	}

	text := newFormatter(t).Move(got)
	for _, part := range []string{"c3:e5", "1개 잡음", "e5", "g7"} {
		if !strings.Contains(text, part) {
			t.Fatalf("move text %q missing %q", text, part)
		}
	}
}

func TestToDTOMoveRejectedIsNil(t *testing.T) {
	r := &pvpcheckers.MoveResult{Rejected: &checkersdto.DomainError{Code: checkersdto.CodeIllegalMove}}
	if ToDTOMove(r, nil) != nil {
		t.Fatalf("rejected move must not convert")
	}
}

func TestFormatterFinishedMove(t *testing.T) {
	f := newFormatter(t)
	text := f.Move(&checkersdto.MoveSummary{
		MoverName: "bob",
		Move:      "c5:a3",
		Captured:  []string{"b4"},
		Promoted:  false,
		Finished:  true,
		Winner:    "bob",
	})
	if !strings.Contains(text, "bob님 승리") {
		t.Fatalf("finish text = %q", text)
	}
}

func TestFormatterRejected(t *testing.T) {
	f := newFormatter(t)
	if got := f.Rejected(&checkersdto.DomainError{Code: checkersdto.CodeNotYourTurn}); got != "상대 차례입니다." {
		t.Fatalf("not_your_turn = %q", got)
	}
	got := f.Rejected(&checkersdto.DomainError{Code: "weird", Message: "boom"})
	if !strings.Contains(got, "boom") {
		t.Fatalf("unknown code text = %q", got)
	}
	if got := f.Rejected(&checkersdto.DomainError{Code: checkersdto.CodeChainPending, Message: "capture must continue from e5"}); got != "capture must continue from e5" {
		t.Fatalf("chain_pending = %q", got)
	}
}

func TestFormatterSelection(t *testing.T) {
	f := newFormatter(t)
	if got := f.Selection("c3", []string{"b4", "d4"}, false); got != "c3 이동 가능: b4, d4" {
		t.Fatalf("selection = %q", got)
	}
	if got := f.Selection("c3", []string{"e5"}, true); !strings.Contains(got, "잡기 필수") {
		t.Fatalf("capture selection = %q", got)
	}
	if got := f.Selection("a1", nil, false); !strings.Contains(got, "없습니다") {
		t.Fatalf("empty selection = %q", got)
	}
}

func TestFormatterLobby(t *testing.T) {
	f := newFormatter(t)
	entries := ToDTOLobby([]*pvpchan.ChannelMeta{
		{ID: "AB12CD", CreatorName: "alice", CreatorColor: pvpchan.ColorBlack},
		nil,
		{ID: "ZZ99ZZ", CreatorName: "carol"},
	})
	text := f.LobbyList(entries)
	for _, part := range []string{"열린 대기방 (2)", "AB12CD alice (흑)", "ZZ99ZZ carol (랜덤)"} {
		if !strings.Contains(text, part) {
			t.Fatalf("lobby list %q missing %q", text, part)
		}
	}
	if got := f.LobbyError(pvpchan.ErrSelfJoin); got != "자신이 만든 방에는 참가할 수 없습니다." {
		t.Fatalf("self join = %q", got)
	}
	if got := f.LobbyError(errors.New("redis down")); !strings.Contains(got, "redis down") {
		t.Fatalf("generic lobby error = %q", got)
	}
	if got := f.LobbyCreated("AB12CD"); !strings.Contains(got, "!체커 참가 AB12CD") {
		t.Fatalf("created = %q", got)
	}
}

func TestFormatterHistoryPerspective(t *testing.T) {
	f := newFormatter(t)
	ended := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	results := ToDTOResults([]*domain.CheckersResult{
		{GameID: "g1", WhiteID: "u1", WhiteName: "alice", BlackID: "u2", BlackName: "bob", Result: "black", ResultMethod: "resignation", WhiteLeft: 7, BlackLeft: 9, EndedAt: ended},
		nil,
	})
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	text := f.History("bob", "u2", results)
	if !strings.Contains(text, "1. 승 vs alice (흑, 기권) 남은 말 9:7 · 05-01 12:00") {
		t.Fatalf("history = %q", text)
	}
	if got := f.History("bob", "u2", nil); got != "기록이 없습니다." {
		t.Fatalf("empty history = %q", got)
	}
}

func TestFormatterStatusAndHelp(t *testing.T) {
	f := newFormatter(t)
	state := &checkersdto.BoardState{WhiteName: "alice", BlackName: "bob", Turn: "black"}
	if got := f.Status(state); got != "alice vs bob | bob님 차례입니다." {
		t.Fatalf("status = %q", got)
	}
	state.Winner = "white"
	if got := f.Status(state); !strings.Contains(got, "alice님 승리") {
		t.Fatalf("finished status = %q", got)
	}
	if help := f.Help(); !strings.Contains(help, "!체커 방만들기") {
		t.Fatalf("help missing prefix: %q", help)
	}
	if f.Start(&checkersdto.BoardState{GameID: "0123456789", WhiteName: "a", BlackName: "b"}) == "" {
		t.Fatalf("start text empty")
	}
}
