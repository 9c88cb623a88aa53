package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/mesh"
)

// Mode selects how a mesh is rasterised.
type Mode string

const (
	Wireframe Mode = "wireframe"
	Solid     Mode = "solid"
	Points    Mode = "points"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Wireframe, Solid, Points:
		return m, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// Next returns the mode the render-mode toggle switches to.
func (m Mode) Next() Mode {
	if m == Solid {
		return Wireframe
	}
	return Solid
}

var outline = color.RGBA{A: 255}

const pointRadius = 2

// Shade scales the RGB channels of c by intensity.
func Shade(c color.RGBA, intensity float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: c.A,
	}
}

// Brighten adds delta to each RGB channel, saturating at 255.
func Brighten(c color.RGBA, delta int) color.RGBA {
	add := func(v uint8) uint8 {
		return uint8(min(255, int(v)+delta))
	}
	return color.RGBA{R: add(c.R), G: add(c.G), B: add(c.B), A: c.A}
}

func pt(s ScreenPoint) image.Point {
	return image.Point{X: int(s.X), Y: int(s.Y)}
}

// Draw renders m in the given mode.
func (p *Pipeline) Draw(c Canvas, mode Mode, m *mesh.Mesh, model mgl64.Mat4, col color.RGBA) {
	switch mode {
	case Wireframe:
		p.DrawWireframe(c, m, model, col)
	case Points:
		p.DrawPoints(c, m, model, col)
	default:
		p.DrawSolid(c, m, model, col)
	}
}

// DrawWireframe strokes every face edge whose endpoints both project inside
// the viewport.
func (p *Pipeline) DrawWireframe(c Canvas, m *mesh.Mesh, model mgl64.Mat4, col color.RGBA) {
	if m == nil {
		return
	}
	screen := p.Project(m.Vertices, model)
	for _, f := range m.Faces {
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			if a < 0 || b < 0 || a >= len(screen) || b >= len(screen) {
				continue
			}
			if !p.inViewport(screen[a]) || !p.inViewport(screen[b]) {
				continue
			}
			c.Line(pt(screen[a]), pt(screen[b]), col, 1)
		}
	}
}

// DrawSolid fills front-facing faces in mesh order with flat lighting and a
// black outline. There is no depth sort.
func (p *Pipeline) DrawSolid(c Canvas, m *mesh.Mesh, model mgl64.Mat4, col color.RGBA) {
	if m == nil {
		return
	}
	screen := p.Project(m.Vertices, model)
	rot := model.Mat3()

	poly := make([]image.Point, 0, 3)
	for i, f := range m.Faces {
		poly = poly[:0]
		for _, idx := range f {
			if idx < 0 || idx >= len(screen) || !p.inMargin(screen[idx]) {
				poly = poly[:0]
				break
			}
			poly = append(poly, pt(screen[idx]))
		}
		if len(poly) < 3 || !frontFacing(poly) {
			continue
		}

		light := defaultLighting
		if i < len(m.Normals) {
			light = p.Lighting(rot.Mul3x1(m.Normals[i]))
		}
		c.FillPolygon(poly, Shade(col, light))
		c.Polyline(poly, true, outline, 1)
	}
}

// frontFacing reports whether the cross product of the first two edges,
// taken in pixel coordinates with Y pointing down, is positive.
func frontFacing(poly []image.Point) bool {
	e1 := poly[1].Sub(poly[0])
	e2 := poly[2].Sub(poly[0])
	return e1.X*e2.Y-e1.Y*e2.X > 0
}

// DrawPoints draws each vertex inside the viewport as a filled dot.
func (p *Pipeline) DrawPoints(c Canvas, m *mesh.Mesh, model mgl64.Mat4, col color.RGBA) {
	if m == nil {
		return
	}
	for _, s := range p.Project(m.Vertices, model) {
		if p.inViewport(s) {
			c.Circle(pt(s), pointRadius, col, -1)
		}
	}
}

// DrawEdges strokes explicit vertex pairs after projecting them with model.
// Edges with an endpoint outside the viewport are skipped.
func (p *Pipeline) DrawEdges(c Canvas, vertices []mgl64.Vec3, edges [][2]int, model mgl64.Mat4, col color.RGBA, thickness int) {
	screen := p.Project(vertices, model)
	for _, e := range edges {
		if e[0] < 0 || e[1] < 0 || e[0] >= len(screen) || e[1] >= len(screen) {
			continue
		}
		if p.inViewport(screen[e[0]]) && p.inViewport(screen[e[1]]) {
			c.Line(pt(screen[e[0]]), pt(screen[e[1]]), col, thickness)
		}
	}
}
