// Package render is a small software 3D pipeline: model/view/projection
// matrices, screen projection, flat lighting and wireframe, solid or point
// rasterisation onto a Canvas.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Translation returns a translation matrix.
func Translation(x, y, z float64) mgl64.Mat4 {
	return mgl64.Translate3D(x, y, z)
}

// RotationX returns a rotation of angle radians about the X axis.
func RotationX(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(angle)
}

// RotationY returns a rotation of angle radians about the Y axis.
func RotationY(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(angle)
}

// RotationZ returns a rotation of angle radians about the Z axis.
func RotationZ(angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(angle)
}

// UniformScale returns a scale matrix with the same factor on every axis.
func UniformScale(s float64) mgl64.Mat4 {
	return mgl64.Scale3D(s, s, s)
}

// ModelMatrix composes Translate · RotateZ · RotateY · RotateX · Scale.
func ModelMatrix(pos, rot mgl64.Vec3, scale float64) mgl64.Mat4 {
	return Translation(pos.X(), pos.Y(), pos.Z()).
		Mul4(RotationZ(rot.Z())).
		Mul4(RotationY(rot.Y())).
		Mul4(RotationX(rot.X())).
		Mul4(UniformScale(scale))
}

// Perspective returns a projection matrix; fovy is in radians.
func Perspective(fovy, aspect, near, far float64) mgl64.Mat4 {
	return mgl64.Perspective(fovy, aspect, near, far)
}

// LookAt returns a right-handed view matrix.
func LookAt(eye, target, up mgl64.Vec3) mgl64.Mat4 {
	return mgl64.LookAtV(eye, target, up)
}

// WrapAngle reduces a to [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
