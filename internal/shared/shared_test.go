package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "under a minute", seconds: 42, want: "0:42"},
		{name: "minutes", seconds: 605, want: "10:05"},
		{name: "hours", seconds: 3725, want: "1:02:05"},
		{name: "negative clamps", seconds: -3, want: "0:00"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	tc := []struct {
		name    string
		percent int
		width   int
		filled  int
	}{
		{name: "empty", percent: 0, width: 10, filled: 0},
		{name: "half", percent: 50, width: 10, filled: 5},
		{name: "full", percent: 100, width: 10, filled: 10},
		{name: "over clamps", percent: 150, width: 10, filled: 10},
		{name: "under clamps", percent: -10, width: 10, filled: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressBar(tt.percent, tt.width)
			if n := strings.Count(got, "█"); n != tt.filled {
				t.Errorf("ProgressBar(%d, %d) filled = %d, want %d", tt.percent, tt.width, n, tt.filled)
			}
			if n := len([]rune(got)); n != tt.width {
				t.Errorf("ProgressBar(%d, %d) width = %d, want %d", tt.percent, tt.width, n, tt.width)
			}
		})
	}

	if got := ProgressBar(50, 0); got != "" {
		t.Errorf("expected empty bar for zero width, got %q", got)
	}
}

func TestLogger(t *testing.T) {
	t.Run("ApplyLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := ApplyLogLevel(logger, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info should be filtered at warn level, got %q", buf.String())
		}

		if err := ApplyLogLevel(logger, ""); err != nil {
			t.Errorf("empty level should be ignored: %v", err)
		}

		if err := ApplyLogLevel(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "zxy.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("hello")
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected unique non-empty IDs, got %q and %q", a, b)
		}
	})
}
