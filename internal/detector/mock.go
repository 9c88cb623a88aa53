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

// Calls returns how many times Detect has been called.
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

// Fingers selects which fingers of a synthetic hand are extended.
type Fingers struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// Finger columns relative to the palm, index through pinky.
var fingerColumns = [4]float64{0.03, 0.0, -0.03, -0.06}

// SyntheticHand builds normalized landmarks for an upright hand whose index
// knuckle sits at (x, y). Extended fingers point up; curled fingertips fold
// back below their middle joint. The thumb points outward along +x when
// extended and tucks across the palm otherwise.
func SyntheticHand(x, y float64, f Fingers, handedness string) HandLandmarks {
	h := HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: x - 0.01, Y: y + 0.15}
	h.Points[ThumbCMC] = Point3D{X: x + 0.02, Y: y + 0.12}
	h.Points[ThumbMCP] = Point3D{X: x + 0.04, Y: y + 0.09}
	h.Points[ThumbIP] = Point3D{X: x + 0.06, Y: y + 0.05}
	if f.Thumb {
		h.Points[ThumbTip] = Point3D{X: x + 0.10, Y: y + 0.03}
	} else {
		h.Points[ThumbTip] = Point3D{X: x - 0.02, Y: y + 0.10, Z: -0.02}
	}

	extended := [4]bool{f.Index, f.Middle, f.Ring, f.Pinky}
	for i, dx := range fingerColumns {
		base := IndexMCP + i*4
		h.Points[base] = Point3D{X: x + dx, Y: y}
		h.Points[base+1] = Point3D{X: x + dx, Y: y - 0.05}
		if extended[i] {
			h.Points[base+2] = Point3D{X: x + dx, Y: y - 0.08}
			h.Points[base+3] = Point3D{X: x + dx, Y: y - 0.11}
		} else {
			h.Points[base+2] = Point3D{X: x + dx, Y: y - 0.03, Z: -0.03}
			h.Points[base+3] = Point3D{X: x + dx, Y: y - 0.01, Z: -0.02}
		}
	}

	return h
}

// PinchLandmarks returns normalized landmarks of a hand pinching with the
// thumb and index tips 0.02 apart horizontally, centred on (x, y).
func PinchLandmarks(x, y float64, handedness string) HandLandmarks {
	h := SyntheticHand(x-0.03, y+0.08, Fingers{Index: true}, handedness)
	h.Points[IndexTip] = Point3D{X: x + 0.01, Y: y}
	h.Points[ThumbTip] = Point3D{X: x - 0.01, Y: y}
	return h
}

// OpenPalmLandmarks returns a preset open hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return SyntheticHand(0.5, 0.6, Fingers{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}, "Right")
}

// FistLandmarks returns a preset closed fist.
func FistLandmarks() HandLandmarks {
	return SyntheticHand(0.5, 0.6, Fingers{}, "Right")
}

// PointingLandmarks returns a preset hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return SyntheticHand(0.5, 0.6, Fingers{Index: true}, "Right")
}

// PeaceLandmarks returns a preset hand with index and middle fingers extended.
func PeaceLandmarks() HandLandmarks {
	return SyntheticHand(0.5, 0.6, Fingers{Index: true, Middle: true}, "Right")
}
