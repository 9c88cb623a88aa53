package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
)

// Axis is the rotation axis driven by a rotating hand.
type Axis string

const (
	AxisNone Axis = ""
	AxisX    Axis = "x"
	AxisY    Axis = "y"
)

// AxisFor maps handedness to the axis that hand controls: left tilts
// about X, right spins about Y.
func AxisFor(h hand.Handedness) Axis {
	switch h {
	case hand.Left:
		return AxisX
	case hand.Right:
		return AxisY
	}
	return AxisNone
}

// MaxGrabbers is the number of hands that may hold one object.
const MaxGrabbers = 2

// Hold is the interaction state of a 3D object. Exactly one of Idle,
// *Grabbed or *Rotating.
type Hold interface {
	grabbers() []int
}

// Idle means no hand holds the object.
type Idle struct{}

func (Idle) grabbers() []int { return nil }

// Grabbed lists the pinching hands holding the object, first grabber first.
type Grabbed struct {
	Hands []int
}

func (g *Grabbed) grabbers() []int { return g.Hands }

// Rotating is entered when one of two grabbing hands lets go while the
// other keeps pinching. Holder still holds the object; Owner's palm
// motion rotates it.
type Rotating struct {
	Holder  int
	Owner   int
	Axis    Axis
	LastPos mgl64.Vec2
	HasLast bool
}

func (r *Rotating) grabbers() []int { return []int{r.Holder} }

// grabList is the hand list shared by both object kinds.
type grabList []int

func (g *grabList) add(h int) bool {
	if len(*g) >= MaxGrabbers || slices.Contains(*g, h) {
		return false
	}
	*g = append(*g, h)
	return true
}

func (g *grabList) remove(h int) bool {
	i := slices.Index(*g, h)
	if i < 0 {
		return false
	}
	*g = slices.Delete(*g, i, i+1)
	return true
}
