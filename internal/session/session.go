// Package session implements the countdown and one-shot capture state machine
// driven by the per-frame gesture signal.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayusman/handsnap/internal/photo"
	"gocv.io/x/gocv"
)

// DefaultHoldDuration is the countdown length between gesture onset and capture.
const DefaultHoldDuration = 5 * time.Second

// Status texts shown to the user.
const (
	StatusIdle     = "Press Start to begin"
	StatusStarting = "Camera starting..."
	StatusWaiting  = "Show two fingers to take a photo"
	StatusStopped  = "Camera stopped"
)

// ErrNoSaver is reported when a countdown completes without a Saver.
var ErrNoSaver = errors.New("no photo saver configured")

// Phase is the capture state of a session.
type Phase int

const (
	// Idle waits for the gesture. A new session starts here.
	Idle Phase = iota
	// CountingDown has a running timer and no photo taken yet.
	CountingDown
	// Cooldown follows a capture until the gesture is released.
	Cooldown
)

// String returns the phase name used in logs and JSON.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting_down"
	case Cooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Saver persists the frame that was current when a countdown expired.
type Saver interface {
	Save(frame *gocv.Mat, at time.Time) (photo.Photo, error)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(frame *gocv.Mat, at time.Time) (photo.Photo, error)

// Save calls f(frame, at).
func (f SaverFunc) Save(frame *gocv.Mat, at time.Time) (photo.Photo, error) {
	return f(frame, at)
}

// Config holds the session tuning.
type Config struct {
	// HoldDuration is the countdown length. Zero or negative selects
	// DefaultHoldDuration.
	HoldDuration time.Duration
}

// Output is the result of one Step.
type Output struct {
	Phase     Phase
	Status    string
	Remaining time.Duration // countdown left, zero outside CountingDown

	// Fired is true on the single step where the countdown expired and
	// the saver was invoked.
	Fired bool
	// Photo is the saved capture. Nil unless Fired and the save succeeded.
	Photo *photo.Photo
	// Err is the save failure, if any.
	Err error
}

// Session tracks one camera run. It is not safe for concurrent use; the
// frame loop owns it.
type Session struct {
	hold           time.Duration
	saver          Saver
	phase          Phase
	countdownStart time.Time
	status         string
}

// New creates a session in the Idle phase.
func New(cfg Config, saver Saver) *Session {
	hold := cfg.HoldDuration
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &Session{
		hold:   hold,
		saver:  saver,
		phase:  Idle,
		status: StatusWaiting,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Status returns the most recent status text.
func (s *Session) Status() string {
	return s.status
}

// CountdownStart returns when the running countdown began. It is the zero
// time unless the phase is CountingDown.
func (s *Session) CountdownStart() time.Time {
	return s.countdownStart
}

// HoldDuration returns the configured countdown length.
func (s *Session) HoldDuration() time.Duration {
	return s.hold
}

// Reset returns the session to Idle and drops any running countdown.
func (s *Session) Reset() {
	s.phase = Idle
	s.countdownStart = time.Time{}
	s.status = StatusWaiting
}

// Step advances the session by one frame.
//
// frame is handed to the Saver only on the step where the countdown
// expires, so the capture is whatever the camera showed at that moment.
// The countdown keeps running if the gesture drops out; only a completed
// capture is gated on the gesture being released.
func (s *Session) Step(now time.Time, gesture bool, frame *gocv.Mat) Output {
	var out Output

	switch s.phase {
	case Idle:
		if gesture {
			s.phase = CountingDown
			s.countdownStart = now
			s.status = fmt.Sprintf("Two fingers detected! Capturing in %d seconds...", wholeSeconds(s.hold))
			out.Remaining = s.hold
		} else {
			s.status = StatusWaiting
		}

	case CountingDown:
		remaining := s.hold - now.Sub(s.countdownStart)
		if remaining > 0 {
			s.status = fmt.Sprintf("Capturing in %d seconds...", DisplaySeconds(remaining))
			out.Remaining = remaining
			break
		}

		out.Fired = true
		s.capture(now, frame, &out)
		s.countdownStart = time.Time{}
		s.phase = Cooldown
		if !gesture {
			// Already released on the capture frame: re-arm immediately.
			s.phase = Idle
		}

	case Cooldown:
		if !gesture {
			s.phase = Idle
			s.status = StatusWaiting
		}
	}

	out.Phase = s.phase
	out.Status = s.status
	return out
}

func (s *Session) capture(now time.Time, frame *gocv.Mat, out *Output) {
	if s.saver == nil {
		out.Err = ErrNoSaver
		s.status = "Failed to save photo: " + ErrNoSaver.Error()
		return
	}

	p, err := s.saver.Save(frame, now)
	if err != nil {
		out.Err = err
		s.status = "Failed to save photo: " + err.Error()
		return
	}

	out.Photo = &p
	s.status = "Photo saved as " + p.Path
}

// DisplaySeconds is the countdown number shown for a remaining duration:
// the whole seconds left plus one, so the display never reads zero.
func DisplaySeconds(remaining time.Duration) int {
	return int(remaining.Seconds()) + 1
}

func wholeSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
