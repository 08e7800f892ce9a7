package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/orbita-learn/orbita-api/internal/config"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		configured string
		want       slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.configured, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{LogLevel: tt.configured})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if log == nil {
				t.Fatal("Expected a logger, got nil")
			}

			if !log.Enabled(context.Background(), tt.want) {
				t.Errorf("Expected level %v to be enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && log.Enabled(context.Background(), tt.want-4) {
				t.Errorf("Expected level below %v to be disabled", tt.want)
			}
		})
	}
}

func TestContextCarriage(t *testing.T) {
	ctx := context.Background()

	if FromContext(ctx) == nil {
		t.Error("Expected the default logger from a bare context")
	}
	if FromContextOrDefault(ctx, nil) == nil {
		t.Error("Expected the default logger from a bare context")
	}

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if FromContextOrDefault(ctx, fallback) != fallback {
		t.Error("Expected the fallback logger from a bare context")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("trace_id", "abc"))
	ctx = WithContext(ctx, log)

	if FromContext(ctx) != log {
		t.Error("Expected the carried logger back from the context")
	}
	if FromContextOrDefault(ctx, nil) != log {
		t.Error("Expected the carried logger to win over the default")
	}
}
