package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type AppConfig struct {
	IrisBaseURL string `env:"IRIS_BASE_URL" validate:"required,url"`
	IrisWSURL   string `env:"IRIS_WS_URL" validate:"required,url"`

	BotPrefix string `env:"BOT_PREFIX" validate:"required"`

	XUserID    string `env:"X_USER_ID"`
	XUserEmail string `env:"X_USER_EMAIL" validate:"omitempty,email"`
	XSessionID string `env:"X_SESSION_ID"`

	RedisURL    string `env:"REDIS_URL" validate:"required,url"`
	DatabaseURL string `env:"DATABASE_URL" validate:"omitempty,url"`

	AllowedRooms []string `env:"ALLOWED_ROOMS"`

	EgressMode   string `env:"EGRESS_MODE" validate:"oneof=http ws auto"`
	EgressDryRun bool   `env:"EGRESS_DRYRUN"`

	MessagesDir string `env:"MESSAGES_DIR"`

	GameTTLSec   int `env:"CHECKERS_GAME_TTL" validate:"gte=60"`
	HistoryLimit int `env:"CHECKERS_HISTORY_LIMIT" validate:"gte=1,lte=50"`
}

// GameTTL is the Redis lifetime of an idle PvP game.
func (c *AppConfig) GameTTL() time.Duration {
	return time.Duration(c.GameTTLSec) * time.Second
}

// Headers returns the X-User-* headers Iris expects on every call.
func (c *AppConfig) Headers() map[string]string {
	m := map[string]string{}
	if c.XUserID != "" {
		m["X-User-Id"] = c.XUserID
	}
	if c.XUserEmail != "" {
		m["X-User-Email"] = c.XUserEmail
	}
	if c.XSessionID != "" {
		m["X-Session-Id"] = c.XSessionID
	}
	return m
}

// RoomAllowed reports whether room passes the ALLOWED_ROOMS filter.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		RedisURL:     "redis://localhost:6379/0",
		EgressMode:   "http",
		GameTTLSec:   int((24 * time.Hour).Seconds()),
		HistoryLimit: 5,
	}

	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	if v := env("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	cfg.DatabaseURL = env("DATABASE_URL")
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))
	cfg.MessagesDir = env("MESSAGES_DIR")

	if v := env("EGRESS_MODE"); v != "" {
		cfg.EgressMode = strings.ToLower(v)
	}
	if v := env("EGRESS_DRYRUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("EGRESS_DRYRUN: %w", err)
		}
		cfg.EgressDryRun = b
	}
	if v := env("CHECKERS_GAME_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CHECKERS_GAME_TTL: %w", err)
		}
		cfg.GameTTLSec = n
	}
	if v := env("CHECKERS_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("CHECKERS_HISTORY_LIMIT: %w", err)
		}
		cfg.HistoryLimit = n
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report env names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return func(s any) error {
		err := v.Struct(s)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "url", "email":
		return fmt.Sprintf("%s is not a valid %s: %q", fe.Field(), fe.Tag(), fe.Value())
	default:
		return fmt.Sprintf("%s fails %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
