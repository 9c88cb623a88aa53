// Package mesh holds triangle meshes in the form the renderer consumes:
// a vertex array, pre-triangulated faces, and one normal per face.
package mesh

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrEmptyMesh is returned when a mesh has no vertices or no usable faces.
var ErrEmptyMesh = errors.New("mesh has no vertices or faces")

// DefaultNormal is used for faces whose normal cannot be derived.
var DefaultNormal = mgl64.Vec3{0, 0, 1}

// Tri is a triangle given as three indices into a vertex array.
type Tri [3]int

// Mesh is an immutable triangle mesh.
type Mesh struct {
	Vertices []mgl64.Vec3
	Faces    []Tri
	// Normals has exactly one entry per face.
	Normals []mgl64.Vec3
}

// New builds a mesh from parsed arrays. Faces that reference a vertex
// outside the array are dropped. normals may be nil, one per face, or one
// per vertex; any other length is ignored and face normals are derived.
func New(vertices []mgl64.Vec3, faces []Tri, normals []mgl64.Vec3) (*Mesh, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyMesh
	}

	perFace := len(normals) == len(faces) && len(faces) > 0
	perVertex := !perFace && len(normals) == len(vertices)

	m := &Mesh{Vertices: vertices}
	for i, f := range faces {
		if !validFace(f, len(vertices)) {
			continue
		}
		m.Faces = append(m.Faces, f)

		var n mgl64.Vec3
		switch {
		case perFace:
			n = unitOr(normals[i], FaceNormal(vertices, f))
		case perVertex:
			sum := normals[f[0]].Add(normals[f[1]]).Add(normals[f[2]])
			n = unitOr(sum, FaceNormal(vertices, f))
		default:
			n = FaceNormal(vertices, f)
		}
		m.Normals = append(m.Normals, n)
	}

	if len(m.Faces) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

func validFace(f Tri, n int) bool {
	for _, idx := range f {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}

// FaceNormal derives the unit normal of face f from its first two edges.
// Degenerate or out-of-range faces yield DefaultNormal.
func FaceNormal(vertices []mgl64.Vec3, f Tri) mgl64.Vec3 {
	if !validFace(f, len(vertices)) {
		return DefaultNormal
	}
	a, b, c := vertices[f[0]], vertices[f[1]], vertices[f[2]]
	return unitOr(b.Sub(a).Cross(c.Sub(a)), DefaultNormal)
}

func unitOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Extent is the largest side of the bounding box.
func (m *Mesh) Extent() float64 {
	lo, hi := m.Bounds()
	d := hi.Sub(lo)
	return math.Max(d.X(), math.Max(d.Y(), d.Z()))
}

// Normalized returns a copy centred on the vertex mean and scaled so the
// largest absolute coordinate equals target. Face normals are unchanged
// since the transform is a uniform scale plus translation.
func (m *Mesh) Normalized(target float64) *Mesh {
	out := &Mesh{
		Vertices: make([]mgl64.Vec3, len(m.Vertices)),
		Faces:    m.Faces,
		Normals:  m.Normals,
	}
	if len(m.Vertices) == 0 {
		return out
	}

	var center mgl64.Vec3
	for _, v := range m.Vertices {
		center = center.Add(v)
	}
	center = center.Mul(1 / float64(len(m.Vertices)))

	maxAbs := 0.0
	for i, v := range m.Vertices {
		c := v.Sub(center)
		out.Vertices[i] = c
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(c.X()), math.Max(math.Abs(c.Y()), math.Abs(c.Z()))))
	}
	if maxAbs > 0 {
		s := target / maxAbs
		for i := range out.Vertices {
			out.Vertices[i] = out.Vertices[i].Mul(s)
		}
	}
	return out
}
