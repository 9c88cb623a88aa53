// Package hand turns raw landmark lists into per-hand semantic frames:
// pinch geometry, bent fingers, a discrete gesture label and handedness.
package hand

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Gesture is a discrete hand pose label.
type Gesture string

const (
	Fist     Gesture = "fist"
	Pointing Gesture = "pointing"
	Pinch    Gesture = "pinch"
	OpenHand Gesture = "open_hand"
	Peace    Gesture = "peace"
)

// Handedness is the left/right label reported by the landmark source.
type Handedness string

const (
	Left    Handedness = "left"
	Right   Handedness = "right"
	Unknown Handedness = "unknown"
)

// Frame is one hand's interpreted state for a single video frame.
// Positions are in pixels.
type Frame struct {
	Index int `json:"index"`

	ThumbTip    mgl64.Vec2 `json:"thumbTip"`
	IndexTip    mgl64.Vec2 `json:"indexTip"`
	MiddleTip   mgl64.Vec2 `json:"middleTip"`
	Wrist       mgl64.Vec2 `json:"wrist"`
	PalmCenter  mgl64.Vec2 `json:"palmCenter"`
	PinchCenter mgl64.Vec2 `json:"pinchCenter"`

	PinchDistance float64 `json:"pinchDistance"`
	Pinching      bool    `json:"pinching"`
	ThumbBent     bool    `json:"thumbBent"`
	IndexBent     bool    `json:"indexBent"`

	// Gestures holds at most one label; the classifier rules are disjoint.
	Gestures   []Gesture  `json:"gestures"`
	Handedness Handedness `json:"handedness"`
	Confidence float64    `json:"confidence"`
}

// Has reports whether g is among the frame's gesture labels.
func (f *Frame) Has(g Gesture) bool {
	for _, x := range f.Gestures {
		if x == g {
			return true
		}
	}
	return false
}

// Find returns the frame with the given index.
func Find(frames []Frame, index int) (*Frame, bool) {
	for i := range frames {
		if frames[i].Index == index {
			return &frames[i], true
		}
	}
	return nil, false
}
