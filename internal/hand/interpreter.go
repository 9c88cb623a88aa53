package hand

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/detector"
)

// Pinch thresholds in pixels.
const (
	PinchMaxDistance   = 60.0
	PinchMinDistance   = 10.0
	PinchLooseDistance = 35.0
	PinchTightDistance = 25.0
)

var (
	fingertips  = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	innerJoints = [5]int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// Interpreter converts landmark lists to Frames for a fixed frame size.
type Interpreter struct {
	width, height int
}

// NewInterpreter returns an interpreter for width×height frames.
func NewInterpreter(width, height int) *Interpreter {
	return &Interpreter{width: width, height: height}
}

// Interpret builds one Frame per hand in detection order, indexed by
// position in that order.
func (in *Interpreter) Interpret(hands []detector.HandLandmarks) []Frame {
	frames := make([]Frame, 0, len(hands))
	for i := range hands {
		frames = append(frames, in.Frame(i, &hands[i]))
	}
	return frames
}

// Frame interprets a single hand. Missing landmarks read as the origin.
func (in *Interpreter) Frame(index int, h *detector.HandLandmarks) Frame {
	px := h.ToPixels(in.width, in.height)
	at := func(i int) mgl64.Vec2 {
		p := px.At(i)
		return mgl64.Vec2{p.X, p.Y}
	}

	f := Frame{
		Index:     index,
		ThumbTip:  at(detector.ThumbTip),
		IndexTip:  at(detector.IndexTip),
		MiddleTip: at(detector.MiddleTip),
		Wrist:     at(detector.Wrist),
	}
	f.PalmCenter = f.Wrist.Add(at(detector.IndexMCP)).Mul(0.5)
	f.PinchCenter = f.ThumbTip.Add(f.IndexTip).Mul(0.5)
	f.PinchDistance = f.ThumbTip.Sub(f.IndexTip).Len()

	f.ThumbBent = px.At(detector.ThumbTip).X < px.At(detector.ThumbIP).X
	f.IndexBent = px.At(detector.IndexTip).Y > px.At(detector.IndexPIP).Y
	f.Pinching = IsPinching(f.PinchDistance, f.ThumbBent, f.IndexBent)

	if g, ok := ClassifyGesture(&px); ok {
		f.Gestures = []Gesture{g}
	}

	f.Handedness, f.Confidence = handedness(h)
	return f
}

// IsPinching applies the pinch heuristic to a thumb–index distance.
func IsPinching(distance float64, thumbBent, indexBent bool) bool {
	if distance < PinchTightDistance {
		return true
	}
	return distance < PinchMaxDistance &&
		distance > PinchMinDistance &&
		(thumbBent || indexBent || distance < PinchLooseDistance)
}

// ExtendedFingers reports thumb, index, middle, ring and pinky extension.
// The thumb is extended when its tip lies outward (+x) of its inner joint;
// other fingers when the tip lies above their middle joint.
func ExtendedFingers(h *detector.HandLandmarks) [5]bool {
	var ext [5]bool
	ext[0] = h.At(fingertips[0]).X > h.At(innerJoints[0]).X
	for i := 1; i < 5; i++ {
		ext[i] = h.At(fingertips[i]).Y < h.At(innerJoints[i]).Y
	}
	return ext
}

// ClassifyGesture maps the extended-finger pattern to a label. Patterns
// without a label return false.
func ClassifyGesture(h *detector.HandLandmarks) (Gesture, bool) {
	ext := ExtendedFingers(h)
	count := 0
	for _, e := range ext {
		if e {
			count++
		}
	}

	switch {
	case count == 0:
		return Fist, true
	case count == 1 && ext[1]:
		return Pointing, true
	case count == 2 && ext[0] && ext[1]:
		return Pinch, true
	case count == 5:
		return OpenHand, true
	case count == 2 && ext[1] && ext[2]:
		return Peace, true
	}
	return "", false
}

func handedness(h *detector.HandLandmarks) (Handedness, float64) {
	var label Handedness
	switch h.Label() {
	case "left":
		label = Left
	case "right":
		label = Right
	default:
		return Unknown, 0
	}
	if h.Score > 0 {
		return label, math.Min(h.Score, 1)
	}
	return label, 1
}
