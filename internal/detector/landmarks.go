// Package detector provides hand landmark types and detector implementations.
package detector

import "strings"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: an ordered landmark list plus an
// optional handedness hint. Points are normalized to [0,1] unless Pixel is set.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness,omitempty"` // "Left", "Right" or empty
	Score      float64   `json:"score,omitempty"`
	Pixel      bool      `json:"pixel,omitempty"`
}

// At returns landmark i, or the origin when i is outside the list.
func (h *HandLandmarks) At(i int) Point3D {
	if h == nil || i < 0 || i >= len(h.Points) {
		return Point3D{}
	}
	return h.Points[i]
}

// Complete reports whether the hand carries the full MediaPipe landmark set.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// Label returns the handedness hint lower-cased, or "" when absent.
func (h *HandLandmarks) Label() string {
	if h == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(h.Handedness))
}

// ToPixels returns a copy of the hand in pixel space for a w×h frame.
// Hands already in pixel space are copied unchanged.
func (h *HandLandmarks) ToPixels(width, height int) HandLandmarks {
	out := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
		Pixel:      true,
		Points:     make([]Point3D, len(h.Points)),
	}
	if h.Pixel {
		copy(out.Points, h.Points)
		return out
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{X: p.X * float64(width), Y: p.Y * float64(height), Z: p.Z}
	}
	return out
}
