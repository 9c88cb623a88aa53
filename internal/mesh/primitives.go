package mesh

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Built-in shapes. Faces are wound clockwise seen from outside, so an outward
// face projects with a positive cross product in Y-down pixel coordinates.
// Normals are given explicitly and point outward.
var primitives = map[string]func() *Mesh{
	"cube":        Cube,
	"octahedron":  Octahedron,
	"tetrahedron": Tetrahedron,
}

// Primitive returns the built-in mesh with the given name.
func Primitive(name string) (*Mesh, error) {
	build, ok := primitives[name]
	if !ok {
		return nil, fmt.Errorf("unknown primitive %q", name)
	}
	return build(), nil
}

// PrimitiveNames lists the built-in mesh names in sorted order.
func PrimitiveNames() []string {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustNew(vertices []mgl64.Vec3, faces []Tri) *Mesh {
	normals := make([]mgl64.Vec3, len(faces))
	for i, f := range faces {
		normals[i] = FaceNormal(vertices, f).Mul(-1)
	}
	m, err := New(vertices, faces, normals)
	if err != nil {
		panic(err)
	}
	return m
}

// Cube is an axis-aligned cube spanning [-1,1] on every axis.
func Cube() *Mesh {
	v := []mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	f := []Tri{
		{4, 6, 5}, {4, 7, 6}, // +z
		{1, 3, 0}, {1, 2, 3}, // -z
		{5, 2, 1}, {5, 6, 2}, // +x
		{0, 7, 4}, {0, 3, 7}, // -x
		{7, 2, 6}, {7, 3, 2}, // +y
		{0, 5, 1}, {0, 4, 5}, // -y
	}
	return mustNew(v, f)
}

// Octahedron has its six vertices on the unit axes.
func Octahedron() *Mesh {
	v := []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	f := []Tri{
		{0, 4, 2}, {2, 4, 1}, {1, 4, 3}, {3, 4, 0},
		{2, 5, 0}, {1, 5, 2}, {3, 5, 1}, {0, 5, 3},
	}
	return mustNew(v, f)
}

// Tetrahedron is the regular tetrahedron inscribed in the [-1,1] cube.
func Tetrahedron() *Mesh {
	v := []mgl64.Vec3{
		{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1},
	}
	f := []Tri{
		{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2},
	}
	return mustNew(v, f)
}
