// Package app wires the camera, detector, capture session and photo
// storage into the start/stop frame loop behind every control surface.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handsnap/internal/capture"
	"github.com/ayusman/handsnap/internal/detector"
	"github.com/ayusman/handsnap/internal/hook"
	"github.com/ayusman/handsnap/internal/photo"
	"github.com/ayusman/handsnap/internal/session"
	"github.com/ayusman/handsnap/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DefaultFrameDelay is the pause between processed frames.
const DefaultFrameDelay = 30 * time.Millisecond

// Stop reasons recorded for a run.
const (
	StopUser   = "user"
	StopCamera = "camera"
)

// SettingLastPhoto is the settings key holding the path of the newest capture.
const SettingLastPhoto = "last_photo"

// ErrAlreadyRunning is returned by Start while a run is active.
var ErrAlreadyRunning = errors.New("camera already running")

// View is one rendered frame and the state shown alongside it.
type View struct {
	Frame   []byte        `json:"-"`
	Status  string        `json:"status"`
	Phase   session.Phase `json:"phase"`
	Running bool          `json:"running"`
	At      time.Time     `json:"timestamp"`
}

// Config holds configuration options for the application.
type Config struct {
	CameraID     int
	HoldDuration time.Duration
	FrameDelay   time.Duration
	JPEGQuality  int
	Retry        capture.RetryConfig

	// Camera and Detector default to the device selected by CameraID and
	// the MediaPipe service.
	Camera   capture.Camera
	Detector detector.Detector

	// Photos is required. Store and Hooks are optional.
	Photos *photo.Store
	Store  *store.Store
	Hooks  *hook.Dispatcher

	Logger *zap.Logger
}

// App runs at most one capture loop at a time.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	logger   *zap.Logger
	views    *Broadcaster

	running atomic.Bool

	mu        sync.Mutex
	starting  bool
	cancel    context.CancelFunc
	done      chan struct{}
	runID     string
	status    string
	lastPhoto *photo.Photo
}

// New creates a new App. It does not touch the camera until Start.
func New(config Config) *App {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.FrameDelay <= 0 {
		config.FrameDelay = DefaultFrameDelay
	}
	if config.HoldDuration <= 0 {
		config.HoldDuration = session.DefaultHoldDuration
	}
	if config.Photos == nil {
		config.Photos = photo.NewStore("", config.Logger)
	}
	if config.Retry == (capture.RetryConfig{}) {
		config.Retry = capture.DefaultRetryConfig()
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		logger:   config.Logger.Named("app"),
		views:    NewBroadcaster(),
		status:   session.StatusIdle,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}

	// Try MediaPipe first, fall back to a detector that never sees a hand.
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), config.Logger); err == nil {
			a.detector = mp
			a.logger.Info("using MediaPipe hand detection")
		} else {
			a.logger.Warn("MediaPipe not available, gestures will not be detected", zap.Error(err))
			a.detector = detector.NewMockDetector()
		}
	}

	if config.Store != nil {
		if s, err := config.Store.Settings().Get(SettingLastPhoto); err == nil {
			a.lastPhoto = &photo.Photo{Path: s}
		}
	}

	return a
}

// Start opens the camera and begins the frame loop. ctx bounds only the
// camera open; the loop runs until Stop or a camera failure.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.cancel != nil || a.starting {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.starting = true
	a.publishLocked(session.StatusStarting, session.Idle, nil)
	a.mu.Unlock()

	runID, err := a.open(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.starting = false

	if err != nil {
		a.logger.Error("camera unavailable", zap.Error(err))
		a.publishLocked(session.StatusStopped, session.Idle, nil)
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.runID = runID
	a.running.Store(true)

	sess := session.New(session.Config{HoldDuration: a.config.HoldDuration}, a.saver(runID))
	a.publishLocked(sess.Status(), sess.Phase(), nil)

	go a.runPipeline(loopCtx, sess, runID, a.done)

	a.logger.Info("capture started", zap.String("run_id", runID), zap.Int("camera", a.config.CameraID))
	return nil
}

// open prepares the output directory and the camera, and records the run.
func (a *App) open(ctx context.Context) (string, error) {
	if err := a.config.Photos.EnsureDir(); err != nil {
		return "", err
	}

	if err := capture.OpenWithRetry(ctx, a.camera, a.config.Retry, a.logger); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	if a.config.Store != nil {
		run := &store.Run{ID: runID, CameraID: a.config.CameraID, StartedAt: time.Now()}
		if err := a.config.Store.Runs().Create(run); err != nil {
			a.logger.Warn("failed to record run", zap.Error(err))
		}
	}
	return runID, nil
}

// Stop ends the running loop and waits for the camera to be released.
// Stopping an idle App is a no-op.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops the loop and shuts down the detector.
func (a *App) Close() error {
	a.Stop()
	if a.detector != nil {
		return a.detector.Close()
	}
	return nil
}

// Toggle starts a stopped App or stops a running one, the way the single
// Start/Stop button behaves.
func (a *App) Toggle(ctx context.Context) error {
	if a.IsRunning() {
		a.Stop()
		return nil
	}
	err := a.Start(ctx)
	if errors.Is(err, ErrAlreadyRunning) {
		return nil
	}
	return err
}

// IsRunning reports whether the frame loop is active.
func (a *App) IsRunning() bool {
	return a.running.Load()
}

// Status returns the current status text.
func (a *App) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// LastPhoto returns the newest saved capture, if any.
func (a *App) LastPhoto() (photo.Photo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastPhoto == nil {
		return photo.Photo{}, false
	}
	return *a.lastPhoto, true
}

// Views returns the broadcaster carrying every rendered frame.
func (a *App) Views() *Broadcaster {
	return a.views
}

// Subscribe is shorthand for Views().Subscribe().
func (a *App) Subscribe() (<-chan View, func()) {
	return a.views.Subscribe()
}

// Photos returns the photo store.
func (a *App) Photos() *photo.Store {
	return a.config.Photos
}

// publishLocked sets the status and publishes a View. The caller holds a.mu.
func (a *App) publishLocked(status string, phase session.Phase, frame []byte) {
	a.status = status
	a.views.Publish(View{
		Frame:   frame,
		Status:  status,
		Phase:   phase,
		Running: a.running.Load(),
		At:      time.Now(),
	})
}

// finish releases the camera and publishes the stopped state. It runs on
// the loop goroutine as it exits.
func (a *App) finish(runID, reason string) {
	if err := a.camera.Close(); err != nil {
		a.logger.Warn("error closing camera", zap.Error(err))
	}

	if a.config.Store != nil {
		if err := a.config.Store.Runs().Finish(runID, time.Now(), reason); err != nil {
			a.logger.Warn("failed to record run end", zap.String("run_id", runID), zap.Error(err))
		}
	}

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = nil
	a.done = nil
	a.runID = ""
	a.running.Store(false)
	a.publishLocked(session.StatusStopped, session.Idle, nil)
	a.mu.Unlock()

	a.logger.Info("capture stopped", zap.String("run_id", runID), zap.String("reason", reason))
}

// saver persists a capture, indexes it and notifies hooks.
func (a *App) saver(runID string) session.Saver {
	return session.SaverFunc(func(frame *gocv.Mat, at time.Time) (photo.Photo, error) {
		p, err := a.config.Photos.Save(frame, at)
		a.record(runID, p, err)
		if err != nil {
			return p, err
		}

		a.config.Hooks.Dispatch(context.Background(), hook.Request{
			Event:   hook.EventPhotoSaved,
			PhotoID: p.ID,
			Path:    p.Path,
			TakenAt: p.TakenAt,
		})
		return p, nil
	})
}

func (a *App) record(runID string, p photo.Photo, saveErr error) {
	if a.config.Store == nil {
		return
	}

	rec := &store.PhotoRecord{
		ID:      p.ID,
		RunID:   runID,
		Path:    p.Path,
		Status:  store.PhotoSaved,
		TakenAt: p.TakenAt,
	}
	if saveErr != nil {
		rec.Status = store.PhotoFailed
		rec.Error = saveErr.Error()
	}

	if err := a.config.Store.Photos().Create(rec); err != nil {
		a.logger.Warn("failed to index photo", zap.String("path", p.Path), zap.Error(err))
		return
	}
	if saveErr == nil {
		if err := a.config.Store.Settings().Set(SettingLastPhoto, p.Path); err != nil {
			a.logger.Warn("failed to remember last photo", zap.Error(err))
		}
	}
}
