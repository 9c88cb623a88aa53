// Package display shows rendered frames in a gocv window and turns key
// presses into scene commands.
package display

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatCanvas draws onto a BGR gocv.Mat, usually the camera frame, so the
// scene appears over the video.
type MatCanvas struct {
	mat *gocv.Mat
}

// NewMatCanvas wraps m. The canvas does not own m.
func NewMatCanvas(m *gocv.Mat) *MatCanvas {
	return &MatCanvas{mat: m}
}

// Mat returns the wrapped frame.
func (c *MatCanvas) Mat() *gocv.Mat {
	return c.mat
}

func (c *MatCanvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.mat.Cols(), c.mat.Rows())
}

func (c *MatCanvas) Line(a, b image.Point, col color.RGBA, thickness int) {
	gocv.Line(c.mat, a, b, col, max(thickness, 1))
}

func (c *MatCanvas) Polyline(pts []image.Point, closed bool, col color.RGBA, thickness int) {
	if len(pts) < 2 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.Polylines(c.mat, pv, closed, col, max(thickness, 1))
}

func (c *MatCanvas) FillPolygon(pts []image.Point, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(c.mat, pv, col)
}

// Circle draws a ring, or a disc when thickness is negative.
func (c *MatCanvas) Circle(center image.Point, radius int, col color.RGBA, thickness int) {
	if radius <= 0 {
		return
	}
	if thickness == 0 {
		thickness = 1
	}
	gocv.Circle(c.mat, center, radius, col, thickness)
}

// Text writes a status line with its baseline at org.
func (c *MatCanvas) Text(org image.Point, s string, col color.RGBA) {
	gocv.PutText(c.mat, s, org, gocv.FontHersheySimplex, 0.5, col, 1)
}
