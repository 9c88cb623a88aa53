package scene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/render"
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	yellow    = color.RGBA{255, 255, 0, 255}
	cyan      = color.RGBA{0, 255, 255, 255}
	blue      = color.RGBA{0, 0, 255, 255}
	green     = color.RGBA{0, 255, 0, 255}
	gray      = color.RGBA{128, 128, 128, 255}
	boxEdges  = [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	boxCorner = []mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
)

func point(v mgl64.Vec2) image.Point {
	return image.Point{X: int(v.X()), Y: int(v.Y())}
}

// Draw renders every visible object, 2D first.
func (s *Scene) Draw(c render.Canvas, p *render.Pipeline) {
	if s.Show2D {
		for _, o := range s.Objects2D {
			draw2D(c, o)
		}
	}
	if s.Show3D {
		for _, o := range s.Objects3D {
			draw3D(c, p, o)
		}
	}
}

func draw2D(c render.Canvas, o *Object2D) {
	r := int(o.Size)
	center := point(o.Center())
	for i := r; i > 0; i -= 2 {
		col := render.Shade(o.Color, 0.8*float64(i)/float64(r))
		if o.Shape == ShapeCube {
			c.FillPolygon(square(center, i), col)
		} else {
			c.Circle(center, i, col, -1)
		}
	}

	switch o.GrabCount() {
	case 1:
		c.Circle(center, r+5, white, 3)
	case 2:
		c.Circle(center, r+5, yellow, 5)
	}
}

func square(c image.Point, half int) []image.Point {
	return []image.Point{
		{c.X - half, c.Y - half}, {c.X + half, c.Y - half},
		{c.X + half, c.Y + half}, {c.X - half, c.Y + half},
	}
}

// Color3D is the colour a 3D object is drawn with given its state.
func Color3D(o *Object3D) color.RGBA {
	switch {
	case o.InRotationMode():
		return cyan
	case o.TwoHandSelected:
		return yellow
	case o.GrabCount() > 0:
		return render.Brighten(o.Color, 80)
	case o.Highlighted:
		return render.Brighten(o.Color, 40)
	}
	return o.Color
}

func draw3D(c render.Canvas, p *render.Pipeline, o *Object3D) {
	if o.Mesh == nil {
		return
	}
	model := o.ModelMatrix()
	p.Draw(c, o.Mode, o.Mesh, model, Color3D(o))

	if o.GrabCount() > 0 {
		half := 0.6 * o.BoundingSize()
		box := make([]mgl64.Vec3, len(boxCorner))
		for i, v := range boxCorner {
			box[i] = v.Mul(half)
		}
		// the box follows position and rotation but not the object's scale
		boxModel := render.ModelMatrix(o.Position, o.Rotation, 1)
		p.DrawEdges(c, box, boxEdges, boxModel, yellow, 2)
	}

	// pinchable radius: yellow for the selected object, blue otherwise
	if s, ok := o.ScreenPosition(p); ok {
		col := blue
		if o.Selected {
			col = yellow
		}
		c.Circle(point(s), int(o.HitRadius()), col, 2)
	}
}

// DrawHands renders per-hand markers: palm and pinch points, a ring on
// hands that own a rotation, and a targeting indicator for hands over a
// free 3D object.
func (s *Scene) DrawHands(c render.Canvas, p *render.Pipeline, frames []hand.Frame) {
	owners := make(map[int]bool)
	for _, o := range s.Objects3D {
		if r := o.Rotating(); r != nil {
			owners[r.Owner] = true
		}
	}

	for i := range frames {
		f := &frames[i]
		palm := point(f.PalmCenter)
		pinch := point(f.PinchCenter)

		if owners[f.Index] {
			c.Circle(palm, 30, cyan, 3)
			c.Circle(palm, 25, cyan, -1)
		}
		c.Circle(palm, 6, white, -1)

		if f.Pinching {
			c.Circle(pinch, 8, green, -1)
		} else {
			c.Circle(pinch, 4, gray, -1)
		}

		if !s.Show3D {
			continue
		}
		for _, o := range s.Objects3D {
			if o.GrabCount() > 0 || !o.IsPointInside(p, f.PinchCenter.X(), f.PinchCenter.Y()) {
				continue
			}
			if sp, ok := o.ScreenPosition(p); ok {
				c.Circle(point(sp), 60, green, 2)
				c.Circle(point(sp), 40, green, 1)
				c.Line(pinch, point(sp), green, 2)
			}
			break
		}
	}
}
