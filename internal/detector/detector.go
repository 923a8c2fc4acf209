package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	// Hands scored below it are not reported.
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config tuned for single-hand pose capture.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}

// filter drops hands below the confidence threshold and caps the result at
// MaxHands. Detectors apply it to whatever their backend returns.
func (c Config) filter(hands []HandLandmarks) []HandLandmarks {
	kept := make([]HandLandmarks, 0, len(hands))
	for _, h := range hands {
		if h.Score < c.MinConfidence {
			continue
		}
		kept = append(kept, h)
		if c.MaxHands > 0 && len(kept) == c.MaxHands {
			break
		}
	}
	return kept
}
