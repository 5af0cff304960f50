package pvpcheckers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/domain"

	_ "github.com/lib/pq"
)

// ResultStore keeps finished games after their Redis record expires.
type ResultStore interface {
	SaveResult(ctx context.Context, g *Game, method string) error
	RecentResults(ctx context.Context, userID string, limit int) ([]*domain.CheckersResult, error)
}

const schema = `CREATE TABLE IF NOT EXISTS checkers_games (
    game_id        TEXT PRIMARY KEY,
    white_id       TEXT NOT NULL,
    white_name     TEXT NOT NULL,
    black_id       TEXT NOT NULL,
    black_name     TEXT NOT NULL,
    origin_room    TEXT NOT NULL,
    resolve_room   TEXT NOT NULL,
    result         TEXT NOT NULL,
    result_method  TEXT NOT NULL,
    final_position TEXT NOT NULL,
    white_left     INTEGER NOT NULL,
    black_left     INTEGER NOT NULL,
    started_at     TIMESTAMPTZ NOT NULL,
    ended_at       TIMESTAMPTZ NOT NULL,
    duration_ms    BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS checkers_games_white_idx ON checkers_games (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS checkers_games_black_idx ON checkers_games (black_id, ended_at DESC);`

// Repository is the Postgres ResultStore.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a final PvP game result.
func (r *Repository) SaveResult(ctx context.Context, g *Game, method string) error {
	rec := resultRecord(g, method)
	if r == nil || r.db == nil || rec == nil {
		return nil
	}
	const q = `INSERT INTO checkers_games (
        game_id, white_id, white_name, black_id, black_name,
        origin_room, resolve_room, result, result_method,
        final_position, white_left, black_left,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
      ) ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        final_position=EXCLUDED.final_position,
        white_left=EXCLUDED.white_left,
        black_left=EXCLUDED.black_left,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		rec.GameID,
		rec.WhiteID, rec.WhiteName,
		rec.BlackID, rec.BlackName,
		rec.OriginRoom, rec.ResolveRoom,
		rec.Result, rec.ResultMethod,
		rec.FinalPosition, rec.WhiteLeft, rec.BlackLeft,
		rec.StartedAt, rec.EndedAt, rec.Duration.Milliseconds(),
	)
	return err
}

func (r *Repository) RecentResults(ctx context.Context, userID string, limit int) ([]*domain.CheckersResult, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	limit = clampLimit(limit)
	const q = `SELECT game_id, white_id, white_name, black_id, black_name,
        origin_room, resolve_room, result, result_method,
        final_position, white_left, black_left,
        started_at, ended_at, duration_ms
      FROM checkers_games
      WHERE white_id = $1 OR black_id = $1
      ORDER BY ended_at DESC
      LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CheckersResult
	for rows.Next() {
		var (
			rec        domain.CheckersResult
			durationMS int64
		)
		if err := rows.Scan(
			&rec.GameID, &rec.WhiteID, &rec.WhiteName, &rec.BlackID, &rec.BlackName,
			&rec.OriginRoom, &rec.ResolveRoom, &rec.Result, &rec.ResultMethod,
			&rec.FinalPosition, &rec.WhiteLeft, &rec.BlackLeft,
			&rec.StartedAt, &rec.EndedAt, &durationMS,
		); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// resultRecord flattens a finished game. Only the final position is kept.
func resultRecord(g *Game, method string) *domain.CheckersResult {
	if g == nil || g.State == nil {
		return nil
	}
	end := g.UpdatedAt
	if end.IsZero() {
		end = time.Now()
	}
	duration := end.Sub(g.CreatedAt)
	if duration < 0 {
		duration = 0
	}
	result := strings.TrimSpace(g.Outcome)
	if result == "" {
		switch g.Winner {
		case g.WhiteID:
			result = checkers.White.String()
		case g.BlackID:
			result = checkers.Black.String()
		}
	}
	return &domain.CheckersResult{
		GameID:        g.ID,
		WhiteID:       g.WhiteID,
		WhiteName:     g.WhiteName,
		BlackID:       g.BlackID,
		BlackName:     g.BlackName,
		OriginRoom:    g.OriginRoom,
		ResolveRoom:   g.ResolveRoom,
		Result:        result,
		ResultMethod:  strings.TrimSpace(method),
		FinalPosition: g.State.Board().Position(),
		WhiteLeft:     g.State.Remaining(checkers.White),
		BlackLeft:     g.State.Remaining(checkers.Black),
		StartedAt:     g.CreatedAt,
		EndedAt:       end,
		Duration:      duration,
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 5
	case limit > 50:
		return 50
	}
	return limit
}
