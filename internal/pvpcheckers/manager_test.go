package pvpcheckers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	m := NewManagerWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// seedGame stores an active game between "w" and "b" on a custom board.
func seedGame(t *testing.T, m *Manager, turn checkers.Color, pieces map[checkers.Square]checkers.Piece) *Game {
	t.Helper()
	var b checkers.Board
	for sq, p := range pieces {
		b[sq.Row][sq.Col] = p
	}
	st, err := checkers.NewGameFromBoard(b, turn)
	if err != nil {
		t.Fatalf("NewGameFromBoard: %v", err)
	}
	now := time.Now()
	g := &Game{
		ID: "seeded", State: st, Status: StatusActive,
		WhiteID: "w", WhiteName: "White", BlackID: "b", BlackName: "Black",
		OriginRoom: "roomA", ResolveRoom: "roomB",
		CreatedAt: now, UpdatedAt: now,
	}
	ctx := context.Background()
	if err := m.save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil {
		t.Fatalf("index: %v", err)
	}
	return g
}

func sq(r, c int) checkers.Square { return checkers.Square{Row: r, Col: c} }

func rejectedCode(r *MoveResult) string {
	if r == nil || r.Rejected == nil {
		return ""
	}
	return r.Rejected.Code
}

func TestNewManagerFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	m, err := NewManager(fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()
	if _, err := NewManager(""); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewManager("http://localhost"); err == nil {
		t.Fatalf("expected error for bad scheme")
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := ParseRedisURL("rediss://:secret@cache.local:6380/3")
	if err != nil {
		t.Fatalf("ParseRedisURL: %v", err)
	}
	if opts.Addr != "cache.local:6380" || opts.Password != "secret" || opts.DB != 3 || opts.TLSConfig == nil {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if _, err := ParseRedisURL("redis://host/abc"); err == nil {
		t.Fatalf("expected error for non-numeric db")
	}
}

func TestCreateGameAssignsColorsAndIndexes(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomB", "u1", "Alice", "u2", "Bob", "black")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}
	if g.BlackID != "u1" || g.WhiteID != "u2" || g.BlackName != "Alice" {
		t.Fatalf("color choice ignored: white=%s black=%s", g.WhiteID, g.BlackID)
	}
	if g.State.Turn() != checkers.White || g.Status != StatusActive {
		t.Fatalf("unexpected initial state %v %v", g.State.Turn(), g.Status)
	}
	for _, u := range []string{"u1", "u2"} {
		got, err := m.GetActiveGameByUser(ctx, u)
		if err != nil || got == nil || got.ID != g.ID {
			t.Fatalf("GetActiveGameByUser(%s) = %v, %v", u, got, err)
		}
	}
	if got, _ := m.GetActiveGameByUserInRoom(ctx, "u1", "roomC"); got != nil {
		t.Fatalf("game must not be visible from an unrelated room")
	}
	if _, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "", "u1", "", ""); err == nil {
		t.Fatalf("expected self-challenge to fail")
	}
}

func TestPlayMoveEnforcesTurnAndMandatoryCapture(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomB", "u1", "u1", "u2", "u2", "white")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	res, err := m.PlayMove(ctx, g.BlackID, "f6-e5")
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if rejectedCode(res) != checkersdto.CodeNotYourTurn {
		t.Fatalf("black moving first: code = %q", rejectedCode(res))
	}

	if res, _ = m.PlayMove(ctx, g.WhiteID, "zz"); rejectedCode(res) != checkersdto.CodeBadNotation {
		t.Fatalf("bad notation: code = %q", rejectedCode(res))
	}

	res, err = m.PlayMove(ctx, g.WhiteID, "c3-d4")
	if err != nil || !res.Applied() {
		t.Fatalf("c3-d4: res=%+v err=%v", res, err)
	}
	if res.Game.Version != 1 || res.Game.State.Turn() != checkers.Black {
		t.Fatalf("after c3-d4: version=%d turn=%v", res.Game.Version, res.Game.State.Turn())
	}

	if res, _ = m.PlayMove(ctx, g.BlackID, "f6-e5"); !res.Applied() {
		t.Fatalf("f6-e5 rejected: %+v", res.Rejected)
	}

	res, err = m.PlayMove(ctx, g.WhiteID, "d4:f6")
	if err != nil || !res.Applied() {
		t.Fatalf("d4:f6: res=%+v err=%v", res, err)
	}
	if diff := cmp.Diff([]checkers.Square{sq(3, 4)}, res.Captured); diff != "" {
		t.Fatalf("captured mismatch (-want +got):\n%s", diff)
	}
	if res.Continues {
		t.Fatalf("no further capture exists from f6")
	}

	// black must recapture; a quiet move is refused
	if res, _ = m.PlayMove(ctx, g.BlackID, "b6-a5"); rejectedCode(res) != checkersdto.CodeIllegalMove {
		t.Fatalf("quiet move under capture duty: code = %q", rejectedCode(res))
	}
	res, err = m.PlayMove(ctx, g.BlackID, "e7:g5")
	if err != nil || !res.Applied() {
		t.Fatalf("e7:g5: res=%+v err=%v", res, err)
	}
	st := res.Game.State
	if st.Remaining(checkers.White) != 11 || st.Remaining(checkers.Black) != 11 {
		t.Fatalf("remaining = %d/%d", st.Remaining(checkers.White), st.Remaining(checkers.Black))
	}

	stored, err := m.LoadGame(ctx, g.ID)
	if err != nil || stored == nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if stored.Version != 4 || stored.LastFrom != "e7" || stored.LastTo != "g5" {
		t.Fatalf("stored record stale: version=%d last=%s-%s", stored.Version, stored.LastFrom, stored.LastTo)
	}
}

func TestPlayMoveChainKeepsTurnUntilDone(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	seedGame(t, m, checkers.White, map[checkers.Square]checkers.Piece{
		sq(5, 2): checkers.WhiteMan,
		sq(4, 3): checkers.BlackMan,
		sq(2, 5): checkers.BlackMan,
		sq(0, 1): checkers.BlackMan,
	})

	res, err := m.PlayMove(ctx, "w", "c3:e5")
	if err != nil || !res.Applied() {
		t.Fatalf("first jump: res=%+v err=%v", res, err)
	}
	if !res.Continues {
		t.Fatalf("expected chain continuation")
	}
	want := checkers.Moves{sq(1, 6): {sq(2, 5)}}
	if diff := cmp.Diff(want, res.Next); diff != "" {
		t.Fatalf("next mismatch (-want +got):\n%s", diff)
	}

	if res, _ = m.PlayMove(ctx, "b", "b8-a7"); rejectedCode(res) != checkersdto.CodeNotYourTurn {
		t.Fatalf("black during white chain: code = %q", rejectedCode(res))
	}

	sel, err := m.Select(ctx, "w", "a1")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Rejected == nil || sel.Rejected.Code != checkersdto.CodeChainPending || sel.Square != sq(3, 4) {
		t.Fatalf("selection during chain: %+v", sel)
	}

	res, err = m.PlayMove(ctx, "w", "e5:g7")
	if err != nil || !res.Applied() || res.Continues {
		t.Fatalf("second jump: res=%+v err=%v", res, err)
	}
	if res.Game.State.Turn() != checkers.Black {
		t.Fatalf("turn must pass after chain ends")
	}
}

func TestFinishingCapturePersistsResult(t *testing.T) {
	m := newTestManager(t)
	repo := NewMemoryRepository()
	m.AttachRepository(repo)
	ctx := context.Background()
	seedGame(t, m, checkers.White, map[checkers.Square]checkers.Piece{
		sq(3, 2): checkers.WhiteMan,
		sq(2, 1): checkers.BlackMan,
	})

	res, err := m.PlayMoveByRoom(ctx, "w", "roomB", "c5:a7")
	if err != nil || !res.Applied() {
		t.Fatalf("PlayMoveByRoom: res=%+v err=%v", res, err)
	}
	if !res.Finished || res.Game.Status != StatusFinished || res.Game.Winner != "w" || res.Game.Outcome != "white" {
		t.Fatalf("unexpected finish: %+v", res.Game)
	}
	if g, _ := m.GetActiveGameByUser(ctx, "w"); g != nil {
		t.Fatalf("finished game must not be active")
	}

	results, err := m.RecentResults(ctx, "b", 5)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	r := results[0]
	if r.Result != "white" || r.ResultMethod != "no_pieces" || r.WhiteLeft != 1 || r.BlackLeft != 0 {
		t.Fatalf("unexpected result record %+v", r)
	}
}

func TestPlayMoveByRoomIgnoresOtherRooms(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	seedGame(t, m, checkers.White, map[checkers.Square]checkers.Piece{
		sq(5, 2): checkers.WhiteMan,
		sq(0, 1): checkers.BlackMan,
	})
	res, err := m.PlayMoveByRoom(ctx, "w", "roomZ", "c3-d4")
	if err != nil || res != nil {
		t.Fatalf("expected no game in roomZ, got res=%+v err=%v", res, err)
	}
}

func TestResignAwardsOpponent(t *testing.T) {
	m := newTestManager(t)
	repo := NewMemoryRepository()
	m.AttachRepository(repo)
	ctx := context.Background()
	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomA", "u1", "u1", "u2", "u2", "white")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	done, err := m.Resign(ctx, "u2")
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if done.Status != StatusResigned || done.Winner != "u1" || done.Outcome != "white" {
		t.Fatalf("unexpected resign result %+v", done)
	}
	if again, err := m.Resign(ctx, "u2"); err != nil || again != nil {
		t.Fatalf("second resign: %v %v", again, err)
	}
	results, _ := repo.RecentResults(ctx, "u1", 5)
	if len(results) != 1 || results[0].GameID != g.ID || results[0].ResultMethod != "resignation" {
		t.Fatalf("resignation not persisted: %+v", results)
	}
}

func TestSelectAndToDTO(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	g, err := m.CreateGameFromChallenge(ctx, "roomA", "roomB", "u1", "u1", "u2", "u2", "white")
	if err != nil {
		t.Fatalf("CreateGameFromChallenge: %v", err)
	}

	sel, err := m.SelectByRoom(ctx, "u1", "roomA", "c3")
	if err != nil || sel == nil || sel.Rejected != nil {
		t.Fatalf("SelectByRoom: sel=%+v err=%v", sel, err)
	}
	if diff := cmp.Diff([]checkers.Square{sq(4, 1), sq(4, 3)}, sel.Moves.Destinations()); diff != "" {
		t.Fatalf("destinations mismatch (-want +got):\n%s", diff)
	}
	if other, _ := m.Select(ctx, "u2", "f6"); other.Rejected == nil || other.Rejected.Code != checkersdto.CodeNotYourTurn {
		t.Fatalf("black selecting on white's turn: %+v", other)
	}

	dto, err := m.ToDTO(ctx, g, sel)
	if err != nil {
		t.Fatalf("ToDTO: %v", err)
	}
	if len(dto.BoardImage) == 0 || dto.Selected != "c3" || dto.Turn != "white" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if diff := cmp.Diff([]string{"b4", "d4"}, dto.Targets); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if dto.Position != checkers.InitialBoard().Position() {
		t.Fatalf("dto position = %q", dto.Position)
	}
	if len(dto.Movable) != 4 || dto.Score != (checkersdto.Score{White: 12, Black: 12}) {
		t.Fatalf("unexpected movable/score: %v %+v", dto.Movable, dto.Score)
	}
}

func TestRecordWithoutStateIsRejected(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	raw := `{"id":"broken","state":null,"status":"ACTIVE","white_id":"w","black_id":"b","origin_room":"roomA"}`
	if err := m.rdb.Set(ctx, gameKey("broken"), raw, time.Hour).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := m.indexParticipants(ctx, "broken", "w", "b"); err != nil {
		t.Fatalf("index: %v", err)
	}

	if _, err := m.LoadGame(ctx, "broken"); !errors.Is(err, ErrCorruptGame) {
		t.Fatalf("LoadGame: err = %v, want ErrCorruptGame", err)
	}
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		_, err := loadTx(ctx, tx, gameKey("broken"))
		return err
	}, gameKey("broken"))
	if !errors.Is(err, ErrCorruptGame) {
		t.Fatalf("loadTx: err = %v, want ErrCorruptGame", err)
	}

	// the broken record is skipped rather than played on
	res, err := m.PlayMove(ctx, "w", "c3-d4")
	if err != nil || res != nil {
		t.Fatalf("PlayMove on broken record: res=%+v err=%v", res, err)
	}
}
