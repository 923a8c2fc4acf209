package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handsnap/internal/store"
	"github.com/spf13/cobra"
)

// newTestCommand builds a command carrying the run flags for loadConfig.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	configFlag = filepath.Join(t.TempDir(), "config.yaml")
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "", "")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "")
	cmd.Flags().IntVar(&cameraFlag, "camera", 0, "")
	cmd.Flags().StringVar(&addrFlag, "addr", "", "")
	cmd.Flags().DurationVar(&holdFlag, "hold", 0, "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestCommand(t))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.OutputDir != "captured_photos" || cfg.HoldDuration != 5*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	cmd := newTestCommand(t, "--output-dir", "shots", "--camera", "2", "--hold", "3s", "--addr", ":9999", "--log-level", "debug")

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.OutputDir != "shots" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.CameraID != 2 {
		t.Errorf("CameraID = %d", cfg.CameraID)
	}
	if cfg.HoldDuration != 3*time.Second {
		t.Errorf("HoldDuration = %v", cfg.HoldDuration)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	if _, err := loadConfig(newTestCommand(t, "--hold=-1s")); err == nil {
		t.Error("expected error for negative hold")
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"windows", "rundll32"},
		{"linux", "xdg-open"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "http://127.0.0.1:8080")
			if name != tt.want {
				t.Errorf("command = %q, want %q", name, tt.want)
			}
			if args[len(args)-1] != "http://127.0.0.1:8080" {
				t.Errorf("url not passed: %v", args)
			}
		})
	}
}

func TestPrintPhotos(t *testing.T) {
	st, err := openStore(filepath.Join(t.TempDir(), "data", "handsnap.db"))
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer st.Close()

	var buf bytes.Buffer
	if err := printPhotos(&buf, st, 10); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No photos yet.") {
		t.Errorf("empty output = %q", buf.String())
	}

	recs := []*store.PhotoRecord{
		{ID: "a", Path: "captured_photos/photo_1.jpg", Status: store.PhotoSaved, TakenAt: time.Now().Add(-time.Minute)},
		{ID: "b", Path: "captured_photos/photo_2.jpg", Status: store.PhotoFailed, Error: "disk full", TakenAt: time.Now()},
	}
	for _, r := range recs {
		if err := st.Photos().Create(r); err != nil {
			t.Fatal(err)
		}
	}

	buf.Reset()
	if err := printPhotos(&buf, st, 10); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "photo_2.jpg (disk full)") {
		t.Errorf("newest row = %q", lines[1])
	}
}
