// Package photo writes captured frames to disk as timestamped JPEG files.
package photo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "captured_photos"

// TimestampLayout formats capture times as YYYYMMDD_HHMMSS.
const TimestampLayout = "20060102_150405"

var (
	// ErrEmptyFrame is returned when asked to save a nil or empty frame.
	ErrEmptyFrame = errors.New("frame is empty")

	// ErrWriteFailed is returned when the encoder could not write the file.
	ErrWriteFailed = errors.New("image write failed")
)

// Photo is a saved capture. It is never modified after creation.
type Photo struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
}

// FileName returns the file name for a capture taken at t.
func FileName(t time.Time) string {
	return "photo_" + t.Format(TimestampLayout) + string(gocv.JPEGFileExt)
}

// Store saves frames under a single output directory, creating it on first use.
type Store struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	created bool
}

// NewStore creates a Store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logger.Named("photos"),
	}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns where a capture taken at t is written.
func (s *Store) Path(t time.Time) string {
	return filepath.Join(s.dir, FileName(t))
}

// EnsureDir creates the output directory if it does not exist.
func (s *Store) EnsureDir() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created {
		if _, err := os.Stat(s.dir); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", s.dir, err)
	}
	s.created = true
	return nil
}

// Save writes frame as a JPEG named after at. The returned Photo carries the
// target path even when the write fails so callers can report it.
func (s *Store) Save(frame *gocv.Mat, at time.Time) (Photo, error) {
	p := Photo{
		ID:      uuid.NewString(),
		Path:    s.Path(at),
		TakenAt: at,
	}

	if frame == nil || frame.Empty() {
		return p, ErrEmptyFrame
	}

	if err := s.EnsureDir(); err != nil {
		return p, err
	}

	if ok := gocv.IMWrite(p.Path, *frame); !ok {
		return p, fmt.Errorf("write %s: %w", p.Path, ErrWriteFailed)
	}

	s.logger.Info("photo saved",
		zap.String("id", p.ID),
		zap.String("path", p.Path),
		zap.Time("taken_at", p.TakenAt))

	return p, nil
}
