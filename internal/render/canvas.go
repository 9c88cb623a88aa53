package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Canvas is a 2D drawing surface. Colors are RGB; a negative thickness
// fills the shape.
type Canvas interface {
	Bounds() image.Rectangle
	Line(a, b image.Point, c color.RGBA, thickness int)
	Polyline(pts []image.Point, closed bool, c color.RGBA, thickness int)
	FillPolygon(pts []image.Point, c color.RGBA)
	Circle(center image.Point, radius int, c color.RGBA, thickness int)
}

// ImageCanvas draws onto an in-memory RGBA image with an anti-aliasing
// vector rasterizer.
type ImageCanvas struct {
	img *image.RGBA
	r   *vector.Rasterizer
}

// NewImageCanvas returns a canvas over a new black w×h image.
func NewImageCanvas(w, h int) *ImageCanvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	return &ImageCanvas{img: img, r: vector.NewRasterizer(w, h)}
}

// Image returns the backing image.
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the canvas with col.
func (c *ImageCanvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// Bounds returns the drawable area.
func (c *ImageCanvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

func (c *ImageCanvas) begin() {
	b := c.img.Bounds()
	c.r.Reset(b.Dx(), b.Dy())
}

func (c *ImageCanvas) flush(col color.RGBA) {
	c.r.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *ImageCanvas) path(pts []vec) {
	if len(pts) < 3 {
		return
	}
	c.r.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		c.r.LineTo(float32(p.x), float32(p.y))
	}
	c.r.ClosePath()
}

type vec struct{ x, y float64 }

// segment appends the quad covering the segment a→b at the given width.
func (c *ImageCanvas) segment(a, b vec, width float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	hw := width / 2
	if l < 1e-9 {
		c.path(square(a, hw))
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	c.path([]vec{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

func square(p vec, hw float64) []vec {
	return []vec{{p.x - hw, p.y - hw}, {p.x + hw, p.y - hw}, {p.x + hw, p.y + hw}, {p.x - hw, p.y + hw}}
}

func center(p image.Point) vec {
	return vec{float64(p.X) + 0.5, float64(p.Y) + 0.5}
}

// Line draws a straight segment.
func (c *ImageCanvas) Line(a, b image.Point, col color.RGBA, thickness int) {
	c.begin()
	c.segment(center(a), center(b), float64(max(thickness, 1)))
	c.flush(col)
}

// Polyline draws connected segments, closing back to the start if closed.
func (c *ImageCanvas) Polyline(pts []image.Point, closed bool, col color.RGBA, thickness int) {
	if len(pts) < 2 {
		return
	}
	c.begin()
	w := float64(max(thickness, 1))
	for i := 0; i+1 < len(pts); i++ {
		c.segment(center(pts[i]), center(pts[i+1]), w)
	}
	if closed && len(pts) > 2 {
		c.segment(center(pts[len(pts)-1]), center(pts[0]), w)
	}
	c.flush(col)
}

// FillPolygon fills the polygon outlined by pts.
func (c *ImageCanvas) FillPolygon(pts []image.Point, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	v := make([]vec, len(pts))
	for i, p := range pts {
		v[i] = center(p)
	}
	c.begin()
	c.path(v)
	c.flush(col)
}

// Circle draws a circle outline, or a disc when thickness is negative.
func (c *ImageCanvas) Circle(p image.Point, radius int, col color.RGBA, thickness int) {
	if radius <= 0 {
		return
	}
	o := center(p)
	r := float64(radius)
	c.begin()
	if thickness < 0 {
		c.path(arc(o, r, false))
	} else {
		hw := float64(max(thickness, 1)) / 2
		c.path(arc(o, r+hw, false))
		if inner := r - hw; inner > 0 {
			// opposite winding cancels coverage inside the ring
			c.path(arc(o, inner, true))
		}
	}
	c.flush(col)
}

func arc(o vec, r float64, reverse bool) []vec {
	n := int(math.Max(16, math.Min(256, r*2)))
	pts := make([]vec, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		if reverse {
			t = -t
		}
		pts[i] = vec{o.x + r*math.Cos(t), o.y + r*math.Sin(t)}
	}
	return pts
}
