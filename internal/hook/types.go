// Package hook runs user-supplied executables after a photo is captured.
package hook

import "time"

// EventPhotoSaved is sent after a capture was written to disk.
const EventPhotoSaved = "photo.saved"

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the events it handles.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Handles reports whether the hook subscribes to event. A manifest without
// events handles every event.
func (m Manifest) Handles(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written as JSON to the hook's stdin.
type Request struct {
	Event   string    `json:"event"`
	PhotoID string    `json:"photo_id"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
}

// Response is read as JSON from the hook's stdout. Empty output counts as
// success.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
