package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Identity resets a column-major 4x4 matrix to the identity.
//
// Parameters:
//   - m: the matrix to reset, must have at least 16 elements
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// IdentityMatrix returns a new identity matrix by value.
//
// Returns:
//   - [16]float32: the identity matrix
func IdentityMatrix() [16]float32 {
	var m [16]float32
	Identity(m[:])
	return m
}

// SliceToBytes reinterprets a slice of fixed-size values as its raw bytes without copying.
//
// Parameters:
//   - data: the slice to reinterpret
//
// Returns:
//   - []byte: a byte view over the slice memory, nil for an empty slice
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// Mul4 multiplies two column-major 4x4 matrices (out = a * b).
// out may alias a or b.
//
// Parameters:
//   - out: destination matrix
//   - a: left operand
//   - b: right operand
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a right-handed perspective projection mapping depth to WebGPU's [0, 1] range.
//
// Parameters:
//   - out: destination matrix
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near: near plane distance
//   - far: far plane distance
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// BuildModelMatrix composes translation, Euler rotation (applied X, then Y, then Z, three.js "XYZ" order)
// and scale into a column-major model matrix.
//
// Parameters:
//   - out: destination matrix
//   - pos: translation
//   - rot: Euler angles in radians
//   - scale: per-axis scale
func BuildModelMatrix(out []float32, pos, rot, scale [3]float32) {
	cx, sx := math32.Cos(rot[0]), math32.Sin(rot[0])
	cy, sy := math32.Cos(rot[1]), math32.Sin(rot[1])
	cz, sz := math32.Cos(rot[2]), math32.Sin(rot[2])

	// R = Rx * Ry * Rz
	out[0] = cy * cz * scale[0]
	out[1] = (cx*sz + sx*sy*cz) * scale[0]
	out[2] = (sx*sz - cx*sy*cz) * scale[0]
	out[3] = 0

	out[4] = -cy * sz * scale[1]
	out[5] = (cx*cz - sx*sy*sz) * scale[1]
	out[6] = (sx*cz + cx*sy*sz) * scale[1]
	out[7] = 0

	out[8] = sy * scale[2]
	out[9] = -sx * cy * scale[2]
	out[10] = cx * cy * scale[2]
	out[11] = 0

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
}

// Invert4 computes the inverse of a column-major 4x4 matrix.
//
// Parameters:
//   - out: destination matrix
//   - m: matrix to invert
//
// Returns:
//   - bool: false if m is singular, in which case out is left untouched
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}
	inv := 1.0 / det

	var r [16]float32
	r[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * inv
	r[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * inv
	r[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * inv
	r[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * inv

	r[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * inv
	r[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * inv
	r[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * inv
	r[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * inv

	r[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * inv
	r[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * inv
	r[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * inv
	r[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * inv

	r[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * inv
	r[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * inv
	r[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * inv
	r[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * inv

	copy(out, r[:])
	return true
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of a model matrix, padded to a mat4
// so it can be uploaded with std140 column alignment. Falls back to the model matrix itself when
// the matrix is singular.
//
// Parameters:
//   - model: the model matrix
//
// Returns:
//   - [16]float32: the normal matrix
func NormalMatrix(model [16]float32) [16]float32 {
	var inv [16]float32
	if !Invert4(inv[:], model[:]) {
		return model
	}
	var n [16]float32
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			n[col*4+row] = inv[row*4+col]
		}
	}
	n[15] = 1
	return n
}

// LookAt writes a right-handed view matrix looking from eye toward center.
//
// Parameters:
//   - out: destination matrix
//   - eye: camera position
//   - center: point being looked at
//   - up: world up vector
func LookAt(out []float32, eye, center, up [3]float32) {
	z := Normalize3(Sub3(eye, center))
	if z == [3]float32{} {
		z = [3]float32{0, 0, 1}
	}
	x := Normalize3(Cross3(up, z))
	if x == [3]float32{} {
		// up is parallel to the view direction, pick any perpendicular axis
		x = Normalize3(Cross3([3]float32{0, 0, 1}, z))
	}
	y := Cross3(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -Dot3(x, eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -Dot3(y, eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -Dot3(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// TransformPoint applies a column-major matrix to a point (w = 1) and performs the perspective divide.
//
// Parameters:
//   - m: the matrix
//   - p: the point
//
// Returns:
//   - [3]float32: the transformed point
func TransformPoint(m [16]float32, p [3]float32) [3]float32 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return [3]float32{x / w, y / w, z / w}
	}
	return [3]float32{x, y, z}
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add3 returns a + b.
func Add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scale3 returns v * s.
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a x b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the euclidean length of v.
func Length3(v [3]float32) float32 {
	return math32.Sqrt(Dot3(v, v))
}

// Normalize3 returns v scaled to unit length, or the zero vector when v is (near) zero.
func Normalize3(v [3]float32) [3]float32 {
	l := Length3(v)
	if l < 1e-8 {
		return [3]float32{}
	}
	return Scale3(v, 1/l)
}
