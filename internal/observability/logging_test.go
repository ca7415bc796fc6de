package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/tempofiller/internal/config"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempofiller.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "WARN", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("dropped")
	logger.Named("tempo").Warn("kept")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(raw)
	if strings.Contains(got, "dropped") {
		t.Fatalf("info line should be filtered at warn level:\n%s", got)
	}
	if !strings.Contains(got, `"message":"kept"`) || !strings.Contains(got, `"logger":"tempo"`) {
		t.Fatalf("unexpected log output:\n%s", got)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty", Format: "console"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !logger.Core().Enabled(0) || logger.Core().Enabled(-1) {
		t.Fatal("expected info level")
	}
}
