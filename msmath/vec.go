// Package msmath provides the float32 vector/matrix math the splat renderer
// needs for camera and projection transforms. It is a trimmed, renamed
// descendant of github.com/soypat/glgl/math/ms3, kept to only the
// operations the renderer and its tests exercise.
package msmath

import math "github.com/chewxy/math32"

// Vec is a 3D vector with padding to 16 bytes for std140/std430-friendly
// uploads, mirroring a GLSL vec3 embedded in a vec4-aligned slot.
type Vec struct {
	X, Y, Z float32
	_       float32
}

// Vec4 is a homogeneous 3D point or direction, the form posVec is built in.
type Vec4 struct {
	X, Y, Z, W float32
}

// Add returns the vector sum of p and q.
func Add(p, q Vec) Vec {
	return Vec{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p minus q.
func Sub(p, q Vec) Vec {
	return Vec{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p scaled by f.
func Scale(f float32, p Vec) Vec {
	return Vec{X: f * p.X, Y: f * p.Y, Z: f * p.Z}
}

// Norm returns the Euclidean norm of p.
func Norm(p Vec) float32 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Unit returns the unit vector colinear to p. Returns the zero vector for
// the zero vector's input, rather than ms3's NaN convention, since camera
// axes in this renderer are never degenerate by construction.
func Unit(p Vec) Vec {
	n := Norm(p)
	if n == 0 {
		return Vec{}
	}
	return Scale(1/n, p)
}

// EqualElem reports whether a and b are equal to within tol per component.
func EqualElem(a, b Vec, tol float32) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
