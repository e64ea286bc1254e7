package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initFile points the global logger at a fresh file and restores the
// previous logger when the test ends.
func initFile(t *testing.T, level string, cfg FileConfig) string {
	t.Helper()
	prev := Log
	t.Cleanup(func() { Log = prev })

	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "rpotool.log")
	}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileLevelFilter(t *testing.T) {
	path := initFile(t, "warn", FileConfig{MaxSizeMB: 1})

	conv := Named("convert")
	conv.Debug("parsed asset", zap.String("name", "silo.rpoz"))
	conv.Info("wrote obj", zap.String("name", "silo.obj"))
	conv.Warn("conversion failed", zap.String("kind", "LayoutDetectionFailed"))

	got := readLog(t, path)
	if strings.Contains(got, "parsed asset") || strings.Contains(got, "wrote obj") {
		t.Errorf("entries below warn should be dropped, got:\n%s", got)
	}
	for _, want := range []string{"WARN", "convert", "conversion failed", "LayoutDetectionFailed"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in log output, got:\n%s", want, got)
		}
	}
}

func TestNamedComponentsShareFile(t *testing.T) {
	path := initFile(t, "debug", FileConfig{MaxSizeMB: 1})

	Named("fetch").Debug("retrying request", zap.Int("attempt", 2))
	Named("convert").Info("batch finished", zap.Int("jobs", 3))

	got := readLog(t, path)
	for _, want := range []string{"DEBUG fetch", "retrying request", "INFO convert", "batch finished", "jobs"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in log output, got:\n%s", want, got)
		}
	}
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	path := initFile(t, "info", FileConfig{
		Path:       filepath.Join(dir, "rpotool.log"),
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	})

	log := Named("convert")
	padding := strings.Repeat("v 0.000000 ", 20)
	for i := 0; i < 6000; i++ {
		log.Info("converted asset", zap.Int("index", i), zap.String("sample", padding))
	}
	Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("active log file missing: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var rotated int
	for _, e := range entries {
		if e.Name() != "rpotool.log" && strings.HasPrefix(e.Name(), "rpotool-") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("expected a rotated backup next to %s, found %d entries", path, len(entries))
	}
}

func TestInitWithoutOutputsDiscards(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	if err := InitWithFileConfig("debug", FileConfig{}, false); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger with no outputs should not enable any level")
	}
	Sync()
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("rpotool.log")
	want := FileConfig{Path: "rpotool.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}
