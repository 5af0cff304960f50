package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IRIS_BASE_URL", "http://iris:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris:3000/ws")
	t.Setenv("BOT_PREFIX", "!")
	for _, k := range []string{
		"X_USER_ID", "X_USER_EMAIL", "X_SESSION_ID", "REDIS_URL", "DATABASE_URL",
		"ALLOWED_ROOMS", "EGRESS_MODE", "EGRESS_DRYRUN", "MESSAGES_DIR",
		"CHECKERS_GAME_TTL", "CHECKERS_HISTORY_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EgressMode != "http" || cfg.HistoryLimit != 5 || cfg.GameTTL() != 24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if !cfg.RoomAllowed("any") {
		t.Fatalf("empty ALLOWED_ROOMS must allow every room")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_ROOMS", " room-a, ,room-b ")
	t.Setenv("EGRESS_MODE", "AUTO")
	t.Setenv("EGRESS_DRYRUN", "true")
	t.Setenv("CHECKERS_GAME_TTL", "600")
	t.Setenv("CHECKERS_HISTORY_LIMIT", "20")
	t.Setenv("X_USER_ID", "bot")
	t.Setenv("X_USER_EMAIL", "bot@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"room-a", "room-b"}, cfg.AllowedRooms); diff != "" {
		t.Fatalf("AllowedRooms (-want +got):\n%s", diff)
	}
	if cfg.EgressMode != "auto" || !cfg.EgressDryRun || cfg.GameTTL() != 10*time.Minute || cfg.HistoryLimit != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RoomAllowed("room-c") || !cfg.RoomAllowed("room-b") {
		t.Fatalf("room filter mismatch")
	}
	want := map[string]string{"X-User-Id": "bot", "X-User-Email": "bot@example.com"}
	if diff := cmp.Diff(want, cfg.Headers()); diff != "" {
		t.Fatalf("Headers (-want +got):\n%s", diff)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"missing prefix", "BOT_PREFIX", "", "BOT_PREFIX is required"},
		{"missing base url", "IRIS_BASE_URL", "", "IRIS_BASE_URL is required"},
		{"bad egress", "EGRESS_MODE", "smoke", "EGRESS_MODE must be one of"},
		{"short ttl", "CHECKERS_GAME_TTL", "5", "CHECKERS_GAME_TTL"},
		{"history too large", "CHECKERS_HISTORY_LIMIT", "500", "CHECKERS_HISTORY_LIMIT"},
		{"non numeric ttl", "CHECKERS_GAME_TTL", "1h", "CHECKERS_GAME_TTL"},
		{"bad dryrun", "EGRESS_DRYRUN", "maybe", "EGRESS_DRYRUN"},
		{"bad email", "X_USER_EMAIL", "nope", "X_USER_EMAIL is not a valid email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}
