package app

import (
	"context"
	"time"

	"github.com/ayusman/handsnap/internal/capture"
	"github.com/ayusman/handsnap/internal/detector"
	"github.com/ayusman/handsnap/internal/gesture"
	"github.com/ayusman/handsnap/internal/render"
	"github.com/ayusman/handsnap/internal/session"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// runPipeline is the frame loop for one run. Per frame it:
//  1. reads and mirrors a frame
//  2. detects hands and evaluates the two-finger gesture
//  3. advances the capture session, which saves the clean frame on expiry
//  4. draws the overlay and publishes the encoded preview
//
// It returns on cancellation or when the camera stops delivering frames.
func (a *App) runPipeline(ctx context.Context, sess *session.Session, runID string, done chan struct{}) {
	reason := StopUser
	defer func() {
		a.finish(runID, reason)
		close(done)
	}()

	logger := a.logger.With(zap.String("run_id", runID))

	ticker := time.NewTicker(a.config.FrameDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("camera stopped delivering frames", zap.Error(err))
			reason = StopCamera
			return
		}

		a.processFrame(logger, sess, frame, time.Now())
		frame.Close()
	}
}

// processFrame runs one frame through detection, the session and the
// preview renderer.
func (a *App) processFrame(logger *zap.Logger, sess *session.Session, frame *gocv.Mat, now time.Time) session.Output {
	capture.Mirror(frame)

	hands, err := a.detector.Detect(frame)
	if err != nil {
		logger.Debug("hand detection failed", zap.Error(err))
		hands = nil
	}

	out := sess.Step(now, gesture.Detect(hands), frame)
	switch {
	case out.Err != nil:
		logger.Error("capture failed", zap.Error(out.Err))
	case out.Photo != nil:
		logger.Info("photo captured", zap.String("path", out.Photo.Path))
	}

	a.publishFrame(logger, frame, hands, out)
	return out
}

func (a *App) publishFrame(logger *zap.Logger, frame *gocv.Mat, hands []detector.HandLandmarks, out session.Output) {
	render.Preview(frame, hands, out.Status)

	data, err := render.JPEG(frame, a.config.JPEGQuality)
	if err != nil {
		logger.Debug("preview encode failed", zap.Error(err))
		data = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if out.Photo != nil {
		p := *out.Photo
		a.lastPhoto = &p
	}
	a.publishLocked(out.Status, out.Phase, data)
}
