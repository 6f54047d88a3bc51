package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetOutputFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.InfoLevel)
	defer Close()

	Debugf("hidden %d", 1)
	Infof("chunk %d done", 3)
	Warnf("slow source")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"message":"chunk 3 done"`) {
		t.Errorf("info line missing: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestInitLoggingToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mcfetch.log")

	if err := InitLogging("debug", path); err != nil {
		t.Fatalf("InitLogging error: %v", err)
	}

	Errorf("failed %s", "badly")
	Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	if !strings.Contains(string(b), "failed badly") {
		t.Errorf("log file missing entry: %s", b)
	}
}

func TestInitLoggingRejectsBadLevel(t *testing.T) {
	if err := InitLogging("loud", ""); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestNopBeforeInit(t *testing.T) {
	Close()

	if L().GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger after Close, got %s", L().GetLevel())
	}
}
