// Package testdata provides scripted landmark sequences for end-to-end
// tests. Coordinates are normalized to the frame.
package testdata

import (
	"github.com/ayusman/mudra/internal/detector"
)

// Frame is the hand list reported for one frame.
type Frame []detector.HandLandmarks

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Drag pinches with one right hand at (x0, y0) and moves the pinch to
// (x1, y1) over n frames, the first frame included.
func Drag(x0, y0, x1, y1 float64, n int) []Frame {
	out := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out = append(out, Frame{detector.PinchLandmarks(lerp(x0, x1, t), lerp(y0, y1, t), "Right")})
	}
	return out
}

// Spread pinches with both hands either side of (cx, cy), their pinch
// centres d0 apart horizontally, and moves them apart to d1 over n frames.
// The left hand is reported first.
func Spread(cx, cy, d0, d1 float64, n int) []Frame {
	out := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		half := lerp(d0, d1, t) / 2
		out = append(out, Frame{
			detector.PinchLandmarks(cx-half, cy, "Left"),
			detector.PinchLandmarks(cx+half, cy, "Right"),
		})
	}
	return out
}

// OpenHand is a right hand with every finger extended and its index
// knuckle at (x, y); it never reads as a pinch.
func OpenHand(x, y float64) detector.HandLandmarks {
	return detector.SyntheticHand(x, y, detector.Fingers{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}, "Right")
}

// Empty returns n frames without hands.
func Empty(n int) []Frame {
	return make([]Frame, n)
}
