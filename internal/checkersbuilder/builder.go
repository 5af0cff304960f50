package checkersbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/config"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/pvp"
	"github.com/park285/cheese-checkers/internal/pvpchan"
	"github.com/park285/cheese-checkers/internal/pvpcheckers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Deps struct {
	Games      *pvpcheckers.Manager
	Lobby      *pvpchan.Manager
	Challenges *pvp.Manager
	Results    pvpcheckers.ResultStore
	Catalog    *msgcat.Catalog
}

// New wires the game stack from cfg. Redis is required; without
// DATABASE_URL finished games are kept in memory only.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for checkers games")
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	opts, err := pvpcheckers.ParseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	games := pvpcheckers.NewManagerWithClient(rdb, cfg.GameTTL())

	var results pvpcheckers.ResultStore
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		repo, err := pvpcheckers.NewRepository(dsn)
		if err != nil {
			_ = games.Close()
			return nil, fmt.Errorf("init result repository: %w", err)
		}
		results = repo
		logger.Info("result_store", zap.String("kind", "postgres"))
	} else {
		results = pvpcheckers.NewMemoryRepository()
		logger.Warn("result_store", zap.String("kind", "memory"))
	}
	games.AttachRepository(results)

	return &Deps{
		Games:      games,
		Lobby:      pvpchan.NewManager(rdb, games),
		Challenges: pvp.NewManager(true),
		Results:    results,
		Catalog:    cat,
	}, nil
}

// Close releases Redis and the result store.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Games != nil {
		errs = append(errs, d.Games.Close())
	}
	if c, ok := d.Results.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
