package detector

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHandLandmarks_At(t *testing.T) {
	t.Run("returns stored landmark", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		if got := hand.At(IndexTip); got != hand.Points[IndexTip] {
			t.Errorf("expected %v, got %v", hand.Points[IndexTip], got)
		}
	})

	t.Run("out of range defaults to origin", func(t *testing.T) {
		hand := HandLandmarks{Points: []Point3D{{X: 0.3, Y: 0.4}}}
		for _, i := range []int{-1, 1, ThumbTip, 99} {
			if got := hand.At(i); got != (Point3D{}) {
				t.Errorf("At(%d): expected origin, got %v", i, got)
			}
		}
	})

	t.Run("nil hand defaults to origin", func(t *testing.T) {
		var hand *HandLandmarks
		if got := hand.At(Wrist); got != (Point3D{}) {
			t.Errorf("expected origin, got %v", got)
		}
	})
}

func TestHandLandmarks_Complete(t *testing.T) {
	if !(&HandLandmarks{Points: make([]Point3D, NumLandmarks)}).Complete() {
		t.Error("expected 21 points to be complete")
	}
	if (&HandLandmarks{Points: make([]Point3D, 5)}).Complete() {
		t.Error("expected 5 points to be incomplete")
	}
}

func TestHandLandmarks_Label(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Left", "left"},
		{" RIGHT ", "right"},
		{"", ""},
	}
	for _, tt := range tests {
		hand := HandLandmarks{Handedness: tt.in}
		if got := hand.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHandLandmarks_ToPixels(t *testing.T) {
	t.Run("scales normalized points", func(t *testing.T) {
		hand := HandLandmarks{
			Points:     []Point3D{{X: 0.5, Y: 0.25, Z: -0.1}},
			Handedness: "Left",
			Score:      0.8,
		}

		px := hand.ToPixels(640, 480)

		if !px.Pixel {
			t.Error("expected Pixel flag to be set")
		}
		if math.Abs(px.Points[0].X-320) > epsilon || math.Abs(px.Points[0].Y-120) > epsilon {
			t.Errorf("expected (320,120), got (%f,%f)", px.Points[0].X, px.Points[0].Y)
		}
		if px.Points[0].Z != -0.1 {
			t.Errorf("expected Z preserved, got %f", px.Points[0].Z)
		}
		if px.Handedness != "Left" || px.Score != 0.8 {
			t.Errorf("expected metadata preserved, got %q %f", px.Handedness, px.Score)
		}
	})

	t.Run("pixel points are copied unchanged", func(t *testing.T) {
		hand := HandLandmarks{Points: []Point3D{{X: 100, Y: 50}}, Pixel: true}

		px := hand.ToPixels(640, 480)
		px.Points[0].X = 1

		if hand.Points[0].X != 100 {
			t.Error("expected source points to be left untouched")
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		expected := []HandLandmarks{OpenPalmLandmarks()}
		mock.SetHands(expected)

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestSyntheticHand(t *testing.T) {
	t.Run("extended fingers point up", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		pips := []int{IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
		tips := []int{IndexTip, MiddleTip, RingTip, PinkyTip}
		for i := range tips {
			if hand.Points[tips[i]].Y >= hand.Points[pips[i]].Y {
				t.Errorf("finger %d: tip should be above its middle joint", i)
			}
		}
		if hand.Points[ThumbTip].X <= hand.Points[ThumbIP].X {
			t.Error("thumb tip should be outside its inner joint")
		}
	})

	t.Run("curled fingers fold below the joint", func(t *testing.T) {
		hand := FistLandmarks()
		pips := []int{IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
		tips := []int{IndexTip, MiddleTip, RingTip, PinkyTip}
		for i := range tips {
			if hand.Points[tips[i]].Y <= hand.Points[pips[i]].Y {
				t.Errorf("finger %d: tip should be below its middle joint", i)
			}
		}
		if hand.Points[ThumbTip].X >= hand.Points[ThumbIP].X {
			t.Error("thumb tip should be tucked inside its inner joint")
		}
	})

	t.Run("fingers are ordered index to pinky", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		if hand.Points[PinkyMCP].X >= hand.Points[RingMCP].X ||
			hand.Points[RingMCP].X >= hand.Points[MiddleMCP].X ||
			hand.Points[MiddleMCP].X >= hand.Points[IndexMCP].X {
			t.Error("expected knuckles ordered pinky < ring < middle < index along x")
		}
	})

	t.Run("pinch tips straddle the centre", func(t *testing.T) {
		hand := PinchLandmarks(0.4, 0.3, "Left")
		cx := (hand.Points[ThumbTip].X + hand.Points[IndexTip].X) / 2
		cy := (hand.Points[ThumbTip].Y + hand.Points[IndexTip].Y) / 2
		if math.Abs(cx-0.4) > epsilon || math.Abs(cy-0.3) > epsilon {
			t.Errorf("expected pinch centre (0.4,0.3), got (%f,%f)", cx, cy)
		}
		if hand.Handedness != "Left" {
			t.Errorf("expected handedness Left, got %s", hand.Handedness)
		}
	})
}

func TestParseServiceResponse(t *testing.T) {
	t.Run("decodes hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.9}]}` + "\n")

		hands, err := parseServiceResponse(line)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 || hands[0].Handedness != "Left" || len(hands[0].Points) != 1 {
			t.Errorf("unexpected hands: %+v", hands)
		}
	})

	t.Run("reports service error", func(t *testing.T) {
		if _, err := parseServiceResponse([]byte(`{"error":"model missing"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		if _, err := parseServiceResponse([]byte(`{hands`)); err == nil {
			t.Error("expected error")
		}
	})
}
