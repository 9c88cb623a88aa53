package scene

import (
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// 2D shape tags.
const (
	ShapeCircle = "circle"
	ShapeCube   = "cube"
)

// Size limits for 2D objects.
const (
	MinSize2D = 10.0
	MaxSize2D = 200.0
)

// Object2D is a flat shape in screen space.
type Object2D struct {
	ID           string
	Name         string
	X, Y         float64
	Size         float64
	OriginalSize float64
	Color        color.RGBA
	Shape        string
	Selected     bool

	hands grabList
}

// NewObject2D returns an ungrabbed shape centred on (x, y).
func NewObject2D(x, y, size float64, c color.RGBA, shape string) *Object2D {
	if shape == "" {
		shape = ShapeCircle
	}
	return &Object2D{
		ID:           uuid.NewString(),
		X:            x,
		Y:            y,
		Size:         size,
		OriginalSize: size,
		Color:        c,
		Shape:        shape,
	}
}

// Center returns the object's position.
func (o *Object2D) Center() mgl64.Vec2 {
	return mgl64.Vec2{o.X, o.Y}
}

// MoveTo sets the object's position.
func (o *Object2D) MoveTo(x, y float64) {
	o.X, o.Y = x, y
}

// Distance is the distance from (x, y) to the object's centre.
func (o *Object2D) Distance(x, y float64) float64 {
	return math.Hypot(x-o.X, y-o.Y)
}

// IsPointInside reports whether (x, y) lies within the object's radius.
func (o *Object2D) IsPointInside(x, y float64) bool {
	return o.Distance(x, y) <= o.Size
}

// ScaleTo sets the size to OriginalSize × factor, clamped to [10, 200].
func (o *Object2D) ScaleTo(factor float64) {
	o.Size = mgl64.Clamp(o.OriginalSize*factor, MinSize2D, MaxSize2D)
}

// GrabCount is the number of hands holding the object.
func (o *Object2D) GrabCount() int {
	return len(o.hands)
}

// GrabbingHands returns the holding hands in grab order.
func (o *Object2D) GrabbingHands() []int {
	return slices.Clone([]int(o.hands))
}

// IsGrabbedBy reports whether hand h holds the object.
func (o *Object2D) IsGrabbedBy(h int) bool {
	return slices.Contains(o.hands, h)
}

// Grab adds hand h as a holder. It fails when two hands already hold it.
func (o *Object2D) Grab(h int) bool {
	return o.hands.add(h)
}

// Release removes hand h and reports whether it was a holder.
func (o *Object2D) Release(h int) bool {
	return o.hands.remove(h)
}

// ReleaseAll drops every holder.
func (o *Object2D) ReleaseAll() {
	o.hands = nil
}
