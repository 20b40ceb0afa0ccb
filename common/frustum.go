package common

import "github.com/chewxy/math32"

// Plane is ax + by + cz + d = 0 with (a, b, c) = Normal and d = Distance.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six planes of a view volume. The positive half-space of every plane is inside.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// ExtractFrustum extracts the frustum planes from a column-major view-projection matrix
// using the Gribb/Hartmann method, adapted for WebGPU's [0, 1] clip depth (near plane = row2).
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the normalized planes
func ExtractFrustum(viewProj [16]float32) Frustum {
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6][4]float32{}
	for i := 0; i < 4; i++ {
		combos[0][i] = r3[i] + r0[i]
		combos[1][i] = r3[i] - r0[i]
		combos[2][i] = r3[i] + r1[i]
		combos[3][i] = r3[i] - r1[i]
		combos[4][i] = r2[i]
		combos[5][i] = r3[i] - r2[i]
	}

	var f Frustum
	for i, c := range combos {
		p := Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
		if l := Length3(p.Normal); l > 0 {
			p.Normal = Scale3(p.Normal, 1/l)
			p.Distance /= l
		}
		f.Planes[i] = p
	}
	return f
}

// IntersectsAABB reports whether any part of the box lies inside the frustum.
// Conservative: boxes straddling a corner outside the frustum may still report true.
//
// Parameters:
//   - box: a world-space bounding box
//
// Returns:
//   - bool: false only when the box is fully outside one plane
func (f Frustum) IntersectsAABB(box AABB) bool {
	if box.Empty() {
		return false
	}
	for _, p := range f.Planes {
		// positive vertex: the box corner furthest along the plane normal
		var pv [3]float32
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				pv[i] = box.Max[i]
			} else {
				pv[i] = box.Min[i]
			}
		}
		if Dot3(p.Normal, pv)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box. The zero value is not empty; use NewAABB for an empty box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// NewAABB returns an empty box that any Extend call will overwrite.
func NewAABB() AABB {
	return AABB{
		Min: [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// Empty reports whether no point was ever added to the box.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to contain p.
func (b *AABB) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o.
func (b *AABB) Union(o AABB) {
	if o.Empty() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Center returns the midpoint of the box.
func (b AABB) Center() [3]float32 {
	return Scale3(Add3(b.Min, b.Max), 0.5)
}

// Transform returns the world-space box enclosing all eight transformed corners.
//
// Parameters:
//   - m: the column-major transform
//
// Returns:
//   - AABB: the enclosing box
func (b AABB) Transform(m [16]float32) AABB {
	out := NewAABB()
	if b.Empty() {
		return out
	}
	for i := 0; i < 8; i++ {
		corner := [3]float32{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out.Extend(TransformPoint(m, corner))
	}
	return out
}
