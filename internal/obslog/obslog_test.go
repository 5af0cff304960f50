package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitFromEnvWritesJSONFile(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	path := filepath.Join(t.TempDir(), "nested", "bot.log")
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")

	if err := InitFromEnv(); err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	L().Info("pvp_move", zap.String("game_id", "g1"))
	L().Debug("hidden")
	Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"pvp_move"`) || !strings.Contains(out, `"game_id":"g1"`) {
		t.Fatalf("log missing entry: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry leaked at info level")
	}
}
