package scene

import (
	"fmt"
	"image/color"
	"log"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/mesh"
	"github.com/ayusman/mudra/internal/render"
)

// Kind tells 2D and 3D objects apart in placements and commands.
type Kind string

const (
	Kind2D Kind = "2d"
	Kind3D Kind = "3d"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Kind2D, Kind3D:
		return k, nil
	}
	return "", fmt.Errorf("unknown object kind %q", s)
}

// Placement describes an object to create. 2D placements use X, Y, Size
// and Shape; 3D placements use X, Y, Z, Scale, Mesh and RenderMode.
type Placement struct {
	ID              string
	Kind            Kind
	Name            string
	Shape           string
	Mesh            string
	X, Y, Z         float64
	Size            float64
	Scale           float64
	Color           color.RGBA
	RenderMode      render.Mode
	AutoRotateSpeed float64
}

// MeshLoader resolves a mesh reference to geometry.
type MeshLoader func(ref string) (*mesh.Mesh, error)

// DefaultLayout is the set of objects shown at start-up.
func DefaultLayout() []Placement {
	return []Placement{
		{Kind: Kind2D, Name: "sun", Shape: ShapeCircle, X: 200, Y: 200, Size: 60, Color: color.RGBA{255, 255, 0, 255}},
		{Kind: Kind2D, Name: "tile", Shape: ShapeCube, X: 400, Y: 300, Size: 80, Color: color.RGBA{100, 100, 255, 255}},
		{Kind: Kind2D, Name: "leaf", Shape: ShapeCircle, X: 600, Y: 250, Size: 50, Color: color.RGBA{100, 255, 100, 255}},
		{Kind: Kind3D, Name: "cube", Mesh: "cube", Z: -4, Scale: 0.7, Color: color.RGBA{255, 150, 100, 255}, RenderMode: render.Solid, AutoRotateSpeed: 0.01},
		{Kind: Kind3D, Name: "octahedron", Mesh: "octahedron", X: -2.5, Y: 1, Z: -3, Scale: 1.2, Color: color.RGBA{120, 80, 255, 255}, RenderMode: render.Solid, AutoRotateSpeed: 0.015},
		{Kind: Kind3D, Name: "tetrahedron", Mesh: "tetrahedron", X: 3, Z: -2, Scale: 0.7, Color: color.RGBA{255, 150, 100, 255}, RenderMode: render.Solid, AutoRotateSpeed: 0.02},
	}
}

// Scene owns every object and the visibility toggles. It is not safe for
// concurrent use; the app loop serialises access.
type Scene struct {
	Objects2D []*Object2D
	Objects3D []*Object3D
	Show2D    bool
	Show3D    bool

	loader MeshLoader
	logger *log.Logger
	rng    *rand.Rand
}

// Option configures a Scene.
type Option func(*Scene)

// WithLoader sets the mesh loader. The default is mesh.Load.
func WithLoader(l MeshLoader) Option {
	return func(s *Scene) { s.loader = l }
}

// WithLogger sets the logger used for skipped placements.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithRand sets the source used by AddRandom.
func WithRand(r *rand.Rand) Option {
	return func(s *Scene) { s.rng = r }
}

// New returns an empty scene with both kinds visible.
func New(opts ...Option) *Scene {
	s := &Scene{
		Show2D: true,
		Show3D: true,
		loader: mesh.Load,
		logger: log.Default(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the scene's objects with placements. Placements whose
// mesh cannot be loaded are skipped and logged.
func (s *Scene) Load(placements []Placement) {
	s.Objects2D, s.Objects3D = nil, nil
	for _, p := range placements {
		if _, err := s.Add(p); err != nil {
			s.logger.Printf("Skipping %s object %q: %v", p.Kind, p.Name, err)
		}
	}
}

// Add creates one object from a placement and returns its ID.
func (s *Scene) Add(p Placement) (string, error) {
	switch p.Kind {
	case Kind2D:
		size := p.Size
		if size <= 0 {
			size = 50
		}
		o := NewObject2D(p.X, p.Y, size, p.Color, p.Shape)
		if p.ID != "" {
			o.ID = p.ID
		}
		o.Name = p.Name
		s.Objects2D = append(s.Objects2D, o)
		return o.ID, nil
	case Kind3D:
		ref := p.Mesh
		if ref == "" {
			ref = "cube"
		}
		m, err := s.loader(ref)
		if err != nil {
			return "", fmt.Errorf("load mesh %q: %w", ref, err)
		}
		scale := p.Scale
		if scale <= 0 {
			scale = 1
		}
		o := NewObject3D(m.Normalized(MeshSize), mgl64.Vec3{p.X, p.Y, p.Z}, scale, p.Color)
		if p.ID != "" {
			o.ID = p.ID
		}
		o.Name = p.Name
		o.MeshRef = ref
		if p.RenderMode != "" {
			o.Mode = p.RenderMode
		}
		o.AutoRotateSpeed = p.AutoRotateSpeed
		if o.AutoRotateSpeed == 0 {
			o.AutoRotateSpeed = 0.01 + 0.005*float64(len(s.Objects3D))
		}
		s.Objects3D = append(s.Objects3D, o)
		return o.ID, nil
	}
	return "", fmt.Errorf("unknown object kind %q", p.Kind)
}

// Remove deletes the object with the given ID and reports whether it
// existed. Held objects are not removed.
func (s *Scene) Remove(id string) (bool, error) {
	for i, o := range s.Objects2D {
		if o.ID == id {
			if o.GrabCount() > 0 {
				return false, fmt.Errorf("object %s is held", id)
			}
			s.Objects2D = append(s.Objects2D[:i], s.Objects2D[i+1:]...)
			return true, nil
		}
	}
	for i, o := range s.Objects3D {
		if o.ID == id {
			if o.GrabCount() > 0 {
				return false, fmt.Errorf("object %s is held", id)
			}
			s.Objects3D = append(s.Objects3D[:i], s.Objects3D[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// AddRandom appends a 2D object with random position, size, colour and
// shape, and returns it.
func (s *Scene) AddRandom() *Object2D {
	channel := func() uint8 { return uint8(50 + s.rng.IntN(206)) }
	shape := ShapeCircle
	if s.rng.IntN(2) == 1 {
		shape = ShapeCube
	}
	o := NewObject2D(
		float64(100+s.rng.IntN(501)),
		float64(100+s.rng.IntN(301)),
		float64(40+s.rng.IntN(41)),
		color.RGBA{channel(), channel(), channel(), 255},
		shape,
	)
	o.Name = fmt.Sprintf("shape-%d", len(s.Objects2D)+1)
	s.Objects2D = append(s.Objects2D, o)
	return o
}

// ReleaseAll drops every grab on every object, including rotation state,
// and clears selection.
func (s *Scene) ReleaseAll() {
	for _, o := range s.Objects2D {
		o.ReleaseAll()
		o.Selected = false
	}
	for _, o := range s.Objects3D {
		o.ResetHold()
		o.Selected = false
		o.Highlighted = false
		o.TwoHandSelected = false
	}
}

// ToggleRenderMode switches every 3D object between solid and wireframe.
func (s *Scene) ToggleRenderMode() {
	for _, o := range s.Objects3D {
		o.Mode = o.Mode.Next()
	}
}

// ToggleAutoRotate flips auto-rotation on every 3D object.
func (s *Scene) ToggleAutoRotate() {
	for _, o := range s.Objects3D {
		o.AutoRotate = !o.AutoRotate
	}
}

// ZeroRotation resets the given axis on every 3D object.
func (s *Scene) ZeroRotation(axis string) {
	for _, o := range s.Objects3D {
		o.ZeroRotation(axis)
	}
}

// Advance steps auto-rotation for one frame.
func (s *Scene) Advance() {
	for _, o := range s.Objects3D {
		o.Advance()
	}
}

// CycleSelection moves the selection of the given kind to the next
// ungrabbed object in list order and returns its index, or -1 when every
// object is held.
func (s *Scene) CycleSelection(kind Kind) int {
	switch kind {
	case Kind2D:
		return cycle(len(s.Objects2D),
			func(i int) bool { return s.Objects2D[i].Selected },
			func(i int) bool { return s.Objects2D[i].GrabCount() > 0 },
			func(i int, v bool) { s.Objects2D[i].Selected = v })
	case Kind3D:
		return cycle(len(s.Objects3D),
			func(i int) bool { return s.Objects3D[i].Selected },
			func(i int) bool { return s.Objects3D[i].GrabCount() > 0 },
			func(i int, v bool) { s.Objects3D[i].Selected = v })
	}
	return -1
}

func cycle(n int, selected, grabbed func(int) bool, set func(int, bool)) int {
	if n == 0 {
		return -1
	}
	cur := -1
	for i := 0; i < n; i++ {
		if selected(i) && !grabbed(i) {
			cur = i
			set(i, false)
			break
		}
	}
	for step := 1; step <= n; step++ {
		next := (cur + step + n) % n
		if !grabbed(next) {
			set(next, true)
			return next
		}
	}
	return -1
}

// Find2D returns the 2D object with the given ID.
func (s *Scene) Find2D(id string) (*Object2D, bool) {
	for _, o := range s.Objects2D {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// Find3D returns the 3D object with the given ID.
func (s *Scene) Find3D(id string) (*Object3D, bool) {
	for _, o := range s.Objects3D {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}
