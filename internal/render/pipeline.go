package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hit-test tuning for screen-space object picking.
const (
	HitRadiusFloor = 45.0
	HitRadiusScale = 65.0
)

const (
	ambient = 0.3
	diffuse = 0.7
	// solid faces with a vertex further than this outside the viewport are skipped
	viewportMargin = 100.0
	// used for faces without a normal
	defaultLighting = 0.7
)

// Config describes the camera and light of a Pipeline.
type Config struct {
	Width, Height int
	FOVDegrees    float64
	Near, Far     float64
	Eye, Target   mgl64.Vec3
	Up            mgl64.Vec3
	LightDir      mgl64.Vec3
}

// DefaultConfig returns a 60° camera at (0,0,5) looking at the origin.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		FOVDegrees: 60,
		Near:       0.1,
		Far:        100,
		Eye:        mgl64.Vec3{0, 0, 5},
		Target:     mgl64.Vec3{0, 0, 0},
		Up:         mgl64.Vec3{0, 1, 0},
		LightDir:   mgl64.Vec3{0.5, 0.5, 1},
	}
}

// Pipeline holds the view and projection matrices for one viewport.
type Pipeline struct {
	width, height int
	projection    mgl64.Mat4
	view          mgl64.Mat4
	viewProj      mgl64.Mat4
	eye, target   mgl64.Vec3
	up            mgl64.Vec3
	light         mgl64.Vec3
}

// ScreenPoint is a projected vertex. OK is false for vertices at or behind
// the camera plane, which have no screen position.
type ScreenPoint struct {
	X, Y float64
	OK   bool
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	if cfg.Up.Len() == 0 {
		cfg.Up = mgl64.Vec3{0, 1, 0}
	}
	light := cfg.LightDir
	if light.Len() == 0 {
		light = DefaultConfig(0, 0).LightDir
	}

	p := &Pipeline{
		width:  cfg.Width,
		height: cfg.Height,
		projection: Perspective(mgl64.DegToRad(cfg.FOVDegrees),
			float64(cfg.Width)/float64(cfg.Height), cfg.Near, cfg.Far),
		up:    cfg.Up,
		light: light.Normalize(),
	}
	p.SetCamera(cfg.Eye, cfg.Target)
	return p
}

// SetCamera moves the camera and rebuilds the view matrix.
func (p *Pipeline) SetCamera(eye, target mgl64.Vec3) {
	p.eye, p.target = eye, target
	p.view = LookAt(eye, target, p.up)
	p.viewProj = p.projection.Mul4(p.view)
}

// Size returns the viewport size in pixels.
func (p *Pipeline) Size() (int, int) {
	return p.width, p.height
}

// Camera returns the current eye and target.
func (p *Pipeline) Camera() (eye, target mgl64.Vec3) {
	return p.eye, p.target
}

// View returns the view matrix.
func (p *Pipeline) View() mgl64.Mat4 { return p.view }

// Projection returns the projection matrix.
func (p *Pipeline) Projection() mgl64.Mat4 { return p.projection }

// LightDir returns the unit light direction.
func (p *Pipeline) LightDir() mgl64.Vec3 { return p.light }

// NDCToScreen maps normalized device coordinates to pixels, Y down.
func (p *Pipeline) NDCToScreen(ndc mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		(ndc.X() + 1) * float64(p.width) / 2,
		(1 - ndc.Y()) * float64(p.height) / 2,
	}
}

// ScreenToNDC is the inverse of NDCToScreen.
func (p *Pipeline) ScreenToNDC(s mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		s.X()*2/float64(p.width) - 1,
		1 - s.Y()*2/float64(p.height),
	}
}

func (p *Pipeline) toScreen(clip mgl64.Vec4) ScreenPoint {
	w := clip.W()
	if w <= 0 {
		return ScreenPoint{}
	}
	s := p.NDCToScreen(mgl64.Vec2{clip.X() / w, clip.Y() / w})
	return ScreenPoint{X: s.X(), Y: s.Y(), OK: true}
}

// Project applies Projection · View · model to every vertex and returns
// screen coordinates.
func (p *Pipeline) Project(vertices []mgl64.Vec3, model mgl64.Mat4) []ScreenPoint {
	mvp := p.viewProj.Mul4(model)
	out := make([]ScreenPoint, len(vertices))
	for i, v := range vertices {
		out[i] = p.toScreen(mvp.Mul4x1(v.Vec4(1)))
	}
	return out
}

// ProjectPoint projects a world position through View · Projection only.
func (p *Pipeline) ProjectPoint(world mgl64.Vec3) (mgl64.Vec2, bool) {
	sp := p.toScreen(p.viewProj.Mul4x1(world.Vec4(1)))
	return mgl64.Vec2{sp.X, sp.Y}, sp.OK
}

// HitRadius is the pick radius in pixels for an object of the given
// bounding size and scale.
func HitRadius(boundingSize, scale float64) float64 {
	return math.Max(HitRadiusFloor, boundingSize*HitRadiusScale*scale)
}

// HitTest reports whether screen point (x, y) lies within the pick radius
// of an object centred at world position center.
func (p *Pipeline) HitTest(center mgl64.Vec3, boundingSize, scale, x, y float64) bool {
	s, ok := p.ProjectPoint(center)
	if !ok {
		return false
	}
	return math.Hypot(x-s.X(), y-s.Y()) <= HitRadius(boundingSize, scale)
}

// Lighting returns the flat-shading intensity in [0,1] for a normal.
func (p *Pipeline) Lighting(normal mgl64.Vec3) float64 {
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	}
	return mgl64.Clamp(ambient+math.Max(0, normal.Dot(p.light))*diffuse, 0, 1)
}

func (p *Pipeline) inViewport(s ScreenPoint) bool {
	return s.OK && s.X >= 0 && s.X < float64(p.width) && s.Y >= 0 && s.Y < float64(p.height)
}

func (p *Pipeline) inMargin(s ScreenPoint) bool {
	return s.OK &&
		s.X >= -viewportMargin && s.X <= float64(p.width)+viewportMargin &&
		s.Y >= -viewportMargin && s.Y <= float64(p.height)+viewportMargin
}
