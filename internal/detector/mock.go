package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// TwoFingerLandmarks returns a right hand on the left half of the frame
// holding up index and middle fingers with the thumb folded across the palm.
func TwoFingerLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.30, Y: 0.85, Z: 0.0}

	// Thumb folded inward: tip sits left of the MCP joint
	landmarks.Points[ThumbCMC] = Point3D{X: 0.35, Y: 0.80, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.38, Y: 0.74, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.36, Y: 0.70, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.33, Y: 0.69, Z: -0.04}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.36, Y: 0.66, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.37, Y: 0.54, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.38, Y: 0.46, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.39, Y: 0.38, Z: 0.0}

	// Middle finger extended upward
	landmarks.Points[MiddleMCP] = Point3D{X: 0.31, Y: 0.65, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.31, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.31, Y: 0.43, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.31, Y: 0.35, Z: 0.0}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.27, Y: 0.67, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.27, Y: 0.62, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.28, Y: 0.66, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.28, Y: 0.70, Z: -0.02}

	// Pinky finger curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.23, Y: 0.70, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.23, Y: 0.66, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.24, Y: 0.69, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.24, Y: 0.72, Z: -0.02}

	return landmarks
}

// FistLandmarks returns a right hand on the left half of the frame with
// every finger curled and the thumb folded.
func FistLandmarks() HandLandmarks {
	landmarks := TwoFingerLandmarks()

	landmarks.Points[IndexPIP] = Point3D{X: 0.37, Y: 0.60, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.37, Y: 0.64, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.36, Y: 0.68, Z: -0.02}

	landmarks.Points[MiddlePIP] = Point3D{X: 0.31, Y: 0.59, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.31, Y: 0.63, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.31, Y: 0.67, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a right hand on the left half of the frame with
// all four fingers extended upward and the thumb spread outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := TwoFingerLandmarks()

	landmarks.Points[ThumbIP] = Point3D{X: 0.44, Y: 0.70, Z: 0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.49, Y: 0.66, Z: 0.03}

	landmarks.Points[RingPIP] = Point3D{X: 0.26, Y: 0.54, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.25, Y: 0.46, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.25, Y: 0.39, Z: 0.0}

	landmarks.Points[PinkyPIP] = Point3D{X: 0.21, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.20, Y: 0.53, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.19, Y: 0.47, Z: 0.0}

	return landmarks
}
