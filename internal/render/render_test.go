package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/mesh"
)

const tol = 1e-9

// recorder is a Canvas that counts primitives.
type recorder struct {
	bounds  image.Rectangle
	lines   int
	fills   [][]image.Point
	colors  []color.RGBA
	polys   int
	circles []image.Point
}

func newRecorder(w, h int) *recorder {
	return &recorder{bounds: image.Rect(0, 0, w, h)}
}

func (r *recorder) Bounds() image.Rectangle { return r.bounds }

func (r *recorder) Line(a, b image.Point, c color.RGBA, thickness int) { r.lines++ }

func (r *recorder) Polyline(pts []image.Point, closed bool, c color.RGBA, thickness int) {
	r.polys++
}

func (r *recorder) FillPolygon(pts []image.Point, c color.RGBA) {
	r.fills = append(r.fills, append([]image.Point(nil), pts...))
	r.colors = append(r.colors, c)
}

func (r *recorder) Circle(center image.Point, radius int, c color.RGBA, thickness int) {
	r.circles = append(r.circles, center)
}

func TestModelMatrixOrder(t *testing.T) {
	pos := mgl64.Vec3{1, 2, 3}
	rot := mgl64.Vec3{0.3, 0.5, 0.7}
	m := ModelMatrix(pos, rot, 2)

	v := mgl64.Vec3{1, 0, 0}
	want := Translation(1, 2, 3).Mul4x1(
		RotationZ(0.7).Mul4x1(RotationY(0.5).Mul4x1(RotationX(0.3).Mul4x1(UniformScale(2).Mul4x1(v.Vec4(1))))))
	got := m.Mul4x1(v.Vec4(1))

	assert.True(t, got.ApproxEqualThreshold(want, tol), "got %v want %v", got, want)
}

func TestRotationMatchesRightHandRule(t *testing.T) {
	// +90° about Z takes +X to +Y
	got := RotationZ(math.Pi / 2).Mul4x1(mgl64.Vec4{1, 0, 0, 1})
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec4{0, 1, 0, 1}, tol))

	// +90° about Y takes +Z to +X
	got = RotationY(math.Pi / 2).Mul4x1(mgl64.Vec4{0, 0, 1, 1})
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec4{1, 0, 0, 1}, tol))
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{1, 1},
		{2 * math.Pi, 0},
		{2*math.Pi + 0.5, 0.5},
		{-0.5, 2*math.Pi - 0.5},
		{-7 * math.Pi, math.Pi},
		{100, math.Mod(100, 2*math.Pi)},
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "WrapAngle(%v)", tt.in)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 2*math.Pi)
	}
}

func TestProjectOriginToCentre(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))

	s, ok := p.ProjectPoint(mgl64.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 320, s.X(), tol)
	assert.InDelta(t, 240, s.Y(), tol)

	// +Y in the world is up on screen
	up, ok := p.ProjectPoint(mgl64.Vec3{0, 1, 0})
	require.True(t, ok)
	assert.Less(t, up.Y(), 240.0)
}

func TestProjectBehindCamera(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))

	_, ok := p.ProjectPoint(mgl64.Vec3{0, 0, 6})
	assert.False(t, ok)

	pts := p.Project([]mgl64.Vec3{{0, 0, 0}, {0, 0, 10}}, mgl64.Ident4())
	assert.True(t, pts[0].OK)
	assert.False(t, pts[1].OK)
}

func TestScreenRoundTrip(t *testing.T) {
	p := NewPipeline(DefaultConfig(800, 600))
	model := ModelMatrix(mgl64.Vec3{0.3, -0.4, -1}, mgl64.Vec3{0.2, 1.1, 0}, 0.8)
	vertices := []mgl64.Vec3{{0.5, 0.5, 0.5}, {-1, 0.2, 0.1}, {0.9, -0.7, 0.3}}

	screen := p.Project(vertices, model)
	mvp := p.Projection().Mul4(p.View()).Mul4(model)
	for i, v := range vertices {
		clip := mvp.Mul4x1(v.Vec4(1))
		ndc := mgl64.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}

		back := p.ScreenToNDC(mgl64.Vec2{screen[i].X, screen[i].Y})
		assert.InDelta(t, ndc.X(), back.X(), 1e-9)
		assert.InDelta(t, ndc.Y(), back.Y(), 1e-9)
	}
}

func TestSetCamera(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	p.SetCamera(mgl64.Vec3{2, 0, 5}, mgl64.Vec3{2, 0, 0})

	s, ok := p.ProjectPoint(mgl64.Vec3{2, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 320, s.X(), 1e-6)

	eye, target := p.Camera()
	assert.Equal(t, mgl64.Vec3{2, 0, 5}, eye)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, target)
}

func TestHitRadius(t *testing.T) {
	assert.Equal(t, 45.0, HitRadius(0.1, 1))
	assert.InDelta(t, 2.8*65*0.7, HitRadius(2.8, 0.7), tol)
}

func TestHitTest(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	center := mgl64.Vec3{0, 0, 0}

	assert.True(t, p.HitTest(center, 0.1, 1, 320+44, 240))
	assert.True(t, p.HitTest(center, 0.1, 1, 320+45, 240))
	assert.False(t, p.HitTest(center, 0.1, 1, 320+46, 240))
	assert.False(t, p.HitTest(mgl64.Vec3{0, 0, 9}, 10, 1, 320, 240), "behind the camera is never hit")
}

func TestLighting(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))

	assert.InDelta(t, 1.0, p.Lighting(p.LightDir()), tol)
	assert.InDelta(t, 0.3, p.Lighting(p.LightDir().Mul(-1)), tol)
	assert.InDelta(t, 1.0, p.Lighting(p.LightDir().Mul(5)), tol, "normals are renormalized")

	n := mgl64.Vec3{0, 0, 1}
	want := 0.3 + n.Dot(mgl64.Vec3{0.5, 0.5, 1}.Normalize())*0.7
	assert.InDelta(t, want, p.Lighting(n), tol)
}

func TestDrawSolidCullsBackFaces(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	rec := newRecorder(640, 480)

	p.DrawSolid(rec, mesh.Cube(), Translation(0, 0, -2), color.RGBA{R: 200, G: 200, B: 200, A: 255})

	// only the +z face is visible head-on
	assert.Len(t, rec.fills, 2)
	assert.Equal(t, 2, rec.polys)
	for _, c := range rec.colors {
		assert.Less(t, c.R, uint8(200))
		assert.Greater(t, c.R, uint8(60))
	}
}

func TestFrontFacing(t *testing.T) {
	tests := []struct {
		name string
		poly []image.Point
		want bool
	}{
		{"positive pixel cross", []image.Point{{100, 100}, {110, 100}, {100, 110}}, true},
		{"negative pixel cross", []image.Point{{100, 100}, {100, 110}, {110, 100}}, false},
		{"degenerate", []image.Point{{100, 100}, {110, 110}, {120, 120}}, false},
		{"only first two edges count", []image.Point{{0, 0}, {10, 0}, {0, 10}, {-50, -50}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frontFacing(tt.poly))
		})
	}
}

func TestDrawSolidKeepsPositiveCrossFaces(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	// a triangle facing the camera, listed so its projection runs right then down
	verts := []mgl64.Vec3{{-0.5, 0.5, 0}, {0.5, 0.5, 0}, {-0.5, -0.5, 0}}
	col := color.RGBA{R: 200, G: 200, B: 200, A: 255}

	kept, err := mesh.New(verts, []mesh.Tri{{0, 1, 2}}, nil)
	require.NoError(t, err)
	rec := newRecorder(640, 480)
	p.DrawSolid(rec, kept, Translation(0, 0, -2), col)
	assert.Len(t, rec.fills, 1)

	culled, err := mesh.New(verts, []mesh.Tri{{0, 2, 1}}, nil)
	require.NoError(t, err)
	rec = newRecorder(640, 480)
	p.DrawSolid(rec, culled, Translation(0, 0, -2), col)
	assert.Empty(t, rec.fills)
}

func TestDrawSolidSkipsFacesOutsideMargin(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	rec := newRecorder(640, 480)

	p.DrawSolid(rec, mesh.Cube(), Translation(40, 0, -2), color.RGBA{R: 255, A: 255})

	assert.Empty(t, rec.fills)
}

func TestDrawSolidUsesRotatedNormals(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	col := color.RGBA{R: 200, G: 200, B: 200, A: 255}

	straight := newRecorder(640, 480)
	p.DrawSolid(straight, mesh.Cube(), Translation(0, 0, -2), col)

	turned := newRecorder(640, 480)
	p.DrawSolid(turned, mesh.Cube(), ModelMatrix(mgl64.Vec3{0, 0, -2}, mgl64.Vec3{0, 0.6, 0}, 1), col)

	require.NotEmpty(t, straight.colors)
	require.NotEmpty(t, turned.colors)
	assert.NotEqual(t, straight.colors[0], turned.colors[0])
}

func TestDrawWireframe(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))

	rec := newRecorder(640, 480)
	p.DrawWireframe(rec, mesh.Cube(), Translation(0, 0, -2), color.RGBA{G: 255, A: 255})
	assert.Equal(t, 36, rec.lines)

	rec = newRecorder(640, 480)
	p.DrawWireframe(rec, mesh.Cube(), Translation(40, 0, -2), color.RGBA{G: 255, A: 255})
	assert.Zero(t, rec.lines)
}

func TestDrawPoints(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	rec := newRecorder(640, 480)

	p.DrawPoints(rec, mesh.Octahedron(), Translation(0, 0, -1), color.RGBA{B: 255, A: 255})

	assert.Len(t, rec.circles, 6)
}

func TestDrawDispatch(t *testing.T) {
	p := NewPipeline(DefaultConfig(640, 480))
	rec := newRecorder(640, 480)

	p.Draw(rec, Points, mesh.Tetrahedron(), mgl64.Ident4(), color.RGBA{A: 255})
	assert.Len(t, rec.circles, 4)

	p.Draw(rec, Wireframe, nil, mgl64.Ident4(), color.RGBA{A: 255})
	assert.Zero(t, rec.lines)
}

func TestParseModeAndNext(t *testing.T) {
	m, err := ParseMode("points")
	require.NoError(t, err)
	assert.Equal(t, Points, m)

	_, err = ParseMode("voxels")
	assert.Error(t, err)

	assert.Equal(t, Wireframe, Solid.Next())
	assert.Equal(t, Solid, Wireframe.Next())
	assert.Equal(t, Solid, Points.Next())
}

func TestShadeAndBrighten(t *testing.T) {
	c := color.RGBA{R: 100, G: 200, B: 250, A: 255}
	assert.Equal(t, color.RGBA{R: 50, G: 100, B: 125, A: 255}, Shade(c, 0.5))
	assert.Equal(t, color.RGBA{R: 180, G: 255, B: 255, A: 255}, Brighten(c, 80))
}

func TestImageCanvas(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	t.Run("fill polygon", func(t *testing.T) {
		c := NewImageCanvas(64, 64)
		c.FillPolygon([]image.Point{{10, 10}, {50, 10}, {50, 50}, {10, 50}}, red)
		assert.Equal(t, red, c.Image().RGBAAt(30, 30))
		assert.Equal(t, color.RGBA{A: 255}, c.Image().RGBAAt(5, 5))
	})

	t.Run("filled circle", func(t *testing.T) {
		c := NewImageCanvas(64, 64)
		c.Circle(image.Point{32, 32}, 10, red, -1)
		assert.Equal(t, red, c.Image().RGBAAt(32, 32))
		assert.Equal(t, uint8(0), c.Image().RGBAAt(32, 50).R)
	})

	t.Run("ring leaves the centre empty", func(t *testing.T) {
		c := NewImageCanvas(64, 64)
		c.Circle(image.Point{32, 32}, 20, red, 2)
		assert.Equal(t, uint8(0), c.Image().RGBAAt(32, 32).R)
		assert.Greater(t, c.Image().RGBAAt(52, 32).R, uint8(128))
	})

	t.Run("line", func(t *testing.T) {
		c := NewImageCanvas(64, 64)
		c.Line(image.Point{0, 20}, image.Point{63, 20}, red, 3)
		assert.Equal(t, red, c.Image().RGBAAt(30, 20))
		assert.Equal(t, uint8(0), c.Image().RGBAAt(30, 40).R)
	})

	t.Run("clear", func(t *testing.T) {
		c := NewImageCanvas(8, 8)
		c.Clear(red)
		assert.Equal(t, red, c.Image().RGBAAt(7, 7))
		assert.Equal(t, image.Rect(0, 0, 8, 8), c.Bounds())
	})

	t.Run("solid cube renders", func(t *testing.T) {
		c := NewImageCanvas(320, 240)
		p := NewPipeline(DefaultConfig(320, 240))
		p.DrawSolid(c, mesh.Cube(), Translation(0, 0, -2), color.RGBA{R: 200, G: 200, B: 200, A: 255})
		assert.NotEqual(t, color.RGBA{A: 255}, c.Image().RGBAAt(160, 120))
	})
}
