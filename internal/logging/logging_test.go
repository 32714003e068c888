package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		level   string
		dev     bool
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{name: "default", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{name: "debug development", level: "debug", dev: true, enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{name: "warn", level: " WARN ", enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tc.level, tc.dev)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if !logger.Core().Enabled(tc.enabled) {
				t.Fatalf("expected %s to be enabled", tc.enabled)
			}
			if logger.Core().Enabled(tc.muted) {
				t.Fatalf("expected %s to be muted", tc.muted)
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
