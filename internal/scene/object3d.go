package scene

import (
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/mesh"
	"github.com/ayusman/mudra/internal/render"
)

// Scale limits for 3D objects.
const (
	MinScale3D = 0.1
	MaxScale3D = 5.0
)

// MeshSize is the extent loaded meshes are normalised to.
const MeshSize = 2.0

// Object3D is a mesh placed in world space.
type Object3D struct {
	ID              string
	Name            string
	MeshRef         string
	Mesh            *mesh.Mesh
	Position        mgl64.Vec3
	Rotation        mgl64.Vec3
	Scale           float64
	Color           color.RGBA
	Mode            render.Mode
	AutoRotate      bool
	AutoRotateSpeed float64

	// Selected is the object picked by cycle-selection. Highlighted marks
	// an open hand over a free object this frame.
	Selected        bool
	Highlighted     bool
	TwoHandSelected bool

	hold         Hold
	boundingSize float64
}

// NewObject3D places m at pos with the given uniform scale.
func NewObject3D(m *mesh.Mesh, pos mgl64.Vec3, scale float64, c color.RGBA) *Object3D {
	o := &Object3D{
		ID:         uuid.NewString(),
		Mesh:       m,
		Position:   pos,
		Scale:      scale,
		Color:      c,
		Mode:       render.Solid,
		AutoRotate: true,
		hold:       Idle{},
	}
	if m != nil {
		o.boundingSize = m.Extent() * scale
	}
	return o
}

// BoundingSize is the mesh extent times the scale the object was created
// with.
func (o *Object3D) BoundingSize() float64 {
	return o.boundingSize
}

// HitRadius is the current pick radius in pixels.
func (o *Object3D) HitRadius() float64 {
	return render.HitRadius(o.boundingSize, o.Scale)
}

// ModelMatrix returns T · Rz · Ry · Rx · S for the object.
func (o *Object3D) ModelMatrix() mgl64.Mat4 {
	return render.ModelMatrix(o.Position, o.Rotation, o.Scale)
}

// ScreenPosition projects the object's centre to pixels.
func (o *Object3D) ScreenPosition(p *render.Pipeline) (mgl64.Vec2, bool) {
	return p.ProjectPoint(o.Position)
}

// IsPointInside reports whether (x, y) is within the pick radius of the
// projected centre.
func (o *Object3D) IsPointInside(p *render.Pipeline, x, y float64) bool {
	return p.HitTest(o.Position, o.boundingSize, o.Scale, x, y)
}

// ZeroRotation resets one axis ("x", "y" or "z") or, for any other
// value, all three.
func (o *Object3D) ZeroRotation(axis string) {
	switch axis {
	case "x":
		o.Rotation[0] = 0
	case "y":
		o.Rotation[1] = 0
	case "z":
		o.Rotation[2] = 0
	default:
		o.Rotation = mgl64.Vec3{}
	}
}

// Advance applies one frame of auto-rotation about Y. Held objects and
// objects with auto-rotation off do not move.
func (o *Object3D) Advance() {
	if !o.AutoRotate || o.GrabCount() > 0 {
		return
	}
	o.Rotation[1] = render.WrapAngle(o.Rotation[1] + o.AutoRotateSpeed)
}

// Hold returns the current interaction state.
func (o *Object3D) Hold() Hold {
	if o.hold == nil {
		return Idle{}
	}
	return o.hold
}

// GrabCount is the number of hands holding the object. A rotating
// object is held by exactly one hand.
func (o *Object3D) GrabCount() int {
	return len(o.Hold().grabbers())
}

// GrabbingHands returns the holding hands in grab order.
func (o *Object3D) GrabbingHands() []int {
	return slices.Clone(o.Hold().grabbers())
}

// IsGrabbedBy reports whether hand h holds the object.
func (o *Object3D) IsGrabbedBy(h int) bool {
	return slices.Contains(o.Hold().grabbers(), h)
}

// Rotating returns the rotation state, or nil outside rotation mode.
func (o *Object3D) Rotating() *Rotating {
	r, _ := o.hold.(*Rotating)
	return r
}

// InRotationMode reports whether a hand is rotating the object.
func (o *Object3D) InRotationMode() bool {
	return o.Rotating() != nil
}

// Grab adds hand h as a holder. It fails at two holders and while the
// object is being rotated.
func (o *Object3D) Grab(h int) bool {
	switch s := o.Hold().(type) {
	case Idle:
		o.hold = &Grabbed{Hands: []int{h}}
		return true
	case *Grabbed:
		l := grabList(s.Hands)
		if !l.add(h) {
			return false
		}
		s.Hands = l
		return true
	}
	return false
}

// Release removes hand h as a holder. Releasing the holder of a rotating
// object ends rotation mode.
func (o *Object3D) Release(h int) bool {
	switch s := o.Hold().(type) {
	case *Grabbed:
		l := grabList(s.Hands)
		if !l.remove(h) {
			return false
		}
		if len(l) == 0 {
			o.hold = Idle{}
		} else {
			s.Hands = l
		}
		return true
	case *Rotating:
		if s.Holder != h {
			return false
		}
		o.hold = Idle{}
		return true
	}
	return false
}

// EnterRotation switches a two-hand grab into rotation mode: released
// becomes the rotation owner and the other grabber keeps holding.
func (o *Object3D) EnterRotation(released int, axis Axis, palm mgl64.Vec2) bool {
	g, ok := o.hold.(*Grabbed)
	if !ok || len(g.Hands) != MaxGrabbers || !slices.Contains(g.Hands, released) {
		return false
	}
	holder := g.Hands[0]
	if holder == released {
		holder = g.Hands[1]
	}
	o.hold = &Rotating{
		Holder:  holder,
		Owner:   released,
		Axis:    axis,
		LastPos: palm,
		HasLast: true,
	}
	return true
}

// ExitRotation leaves rotation mode with the holder still grabbing.
func (o *Object3D) ExitRotation() {
	if r := o.Rotating(); r != nil {
		o.hold = &Grabbed{Hands: []int{r.Holder}}
	}
}

// ResetHold drops every holder and any rotation state.
func (o *Object3D) ResetHold() {
	o.hold = Idle{}
}
