package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeHook creates dir/name with a manifest and a shell script body.
func writeHook(t *testing.T, dir, name string, events []string, script string) string {
	t.Helper()

	hookDir := filepath.Join(dir, name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifest := Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Events:     events,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, "run.sh"), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return hookDir
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
}

func TestManifest_Handles(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		event  string
		want   bool
	}{
		{"no events means all", nil, EventPhotoSaved, true},
		{"subscribed", []string{EventPhotoSaved}, EventPhotoSaved, true},
		{"other event", []string{"run.stopped"}, EventPhotoSaved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Manifest{Events: tt.events}
			if got := m.Handles(tt.event); got != tt.want {
				t.Errorf("Handles(%q) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writeHook(t, dir, "upload", []string{EventPhotoSaved}, "exit 0\n")
	writeHook(t, dir, "notify", nil, "exit 0\n")

	// Directories without a manifest, broken manifests and stray files are skipped.
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	brokenDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(brokenDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(brokenDir, ManifestFile), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := m.List()
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].Manifest.Name != "notify" || hooks[1].Manifest.Name != "upload" {
		t.Errorf("unexpected order: %s, %s", hooks[0].Manifest.Name, hooks[1].Manifest.Name)
	}

	h, err := m.Get("upload")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if h.Executable != filepath.Join(dir, "upload", "run.sh") {
		t.Errorf("Executable = %q", h.Executable)
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrHookNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrHookNotFound", err)
	}

	if got := len(m.For(EventPhotoSaved)); got != 2 {
		t.Errorf("For(photo.saved) = %d hooks, want 2", got)
	}
	if got := len(m.For("run.stopped")); got != 1 {
		t.Errorf("For(run.stopped) = %d hooks, want 1", got)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	for _, dir := range []string{"", filepath.Join(t.TempDir(), "nope")} {
		m := NewManager(dir, nil)
		if err := m.Discover(); err != nil {
			t.Errorf("Discover(%q) error = %v", dir, err)
		}
		if len(m.List()) != 0 {
			t.Errorf("Discover(%q) found hooks", dir)
		}
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "received.json")
	hookDir := writeHook(t, dir, "echo", nil, "cat > "+out+"\necho '{\"success\":true}'\n")

	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	h, err := m.Get("echo")
	if err != nil {
		t.Fatal(err)
	}
	if h.Path != hookDir {
		t.Errorf("Path = %q, want %q", h.Path, hookDir)
	}

	takenAt := time.Date(2024, time.May, 4, 10, 30, 0, 0, time.UTC)
	req := &Request{
		Event:   EventPhotoSaved,
		PhotoID: "abc",
		Path:    "captured_photos/photo_20240504_103000.jpg",
		TakenAt: takenAt,
	}

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not receive input: %v", err)
	}
	var got Request
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid request JSON %q: %v", data, err)
	}
	if got.PhotoID != "abc" || got.Event != EventPhotoSaved || !got.TakenAt.Equal(takenAt) {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestExecutor_Execute_Results(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name        string
		script      string
		wantSuccess bool
		wantErr     string
	}{
		{"silent success", "exit 0\n", true, ""},
		{"reported failure", "echo '{\"success\":false,\"error\":\"quota\"}'\n", false, ""},
		{"non-zero exit", "echo boom >&2\nexit 3\n", false, "boom"},
		{"invalid json", "echo not-json\n", false, "parse hook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeHook(t, dir, "h", nil, tt.script)
			m := NewManager(dir, nil)
			if err := m.Discover(); err != nil {
				t.Fatal(err)
			}
			h, _ := m.Get("h")

			resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{Event: EventPhotoSaved})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if resp.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", resp.Success, tt.wantSuccess)
			}
		})
	}
}

func TestExecutor_Execute_Timeout(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	writeHook(t, dir, "slow", nil, "sleep 5\n")
	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	h, _ := m.Get("slow")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), h, &Request{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not stop the hook promptly")
	}
}

func TestNewExecutor_DefaultTimeout(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	writeHook(t, dir, "touch", []string{EventPhotoSaved}, "touch "+marker+"\n")
	writeHook(t, dir, "other", []string{"run.stopped"}, "exit 1\n")

	m := NewManager(dir, nil)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(m, NewExecutor(5*time.Second), nil)
	if n := d.Dispatch(context.Background(), Request{Event: EventPhotoSaved, PhotoID: "p1"}); n != 1 {
		t.Errorf("Dispatch() started %d hooks, want 1", n)
	}
	d.Wait()

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("hook did not run: %v", err)
	}
}

func TestDispatcher_Nil(t *testing.T) {
	var d *Dispatcher
	if n := d.Dispatch(context.Background(), Request{Event: EventPhotoSaved}); n != 0 {
		t.Errorf("nil Dispatch() = %d, want 0", n)
	}
	d.Wait()
}
