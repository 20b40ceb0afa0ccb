package scene

import "github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"

// GroundBuilderOption is a functional option for configuring the ground plane.
type GroundBuilderOption func(*groundParams)

// WithGroundSize sets the plane extent in world units.
//
// Parameters:
//   - width: extent along local X
//   - height: extent along local Y
//
// Returns:
//   - GroundBuilderOption: option function to apply
func WithGroundSize(width, height float32) GroundBuilderOption {
	return func(g *groundParams) {
		g.width = width
		g.height = height
	}
}

// WithGroundSegments sets the number of quads along each axis.
//
// Parameters:
//   - x: segments along local X
//   - y: segments along local Y
//
// Returns:
//   - GroundBuilderOption: option function to apply
func WithGroundSegments(x, y int) GroundBuilderOption {
	return func(g *groundParams) {
		g.segX = x
		g.segY = y
	}
}

// WithGroundPosition sets the plane translation.
func WithGroundPosition(pos [3]float32) GroundBuilderOption {
	return func(g *groundParams) {
		g.position = pos
	}
}

// WithGroundRotation sets the plane XYZ Euler rotation in radians.
func WithGroundRotation(rot [3]float32) GroundBuilderOption {
	return func(g *groundParams) {
		g.rotation = rot
	}
}

// WithGroundMaterial sets the plane material.
func WithGroundMaterial(mat material.Material) GroundBuilderOption {
	return func(g *groundParams) {
		g.mat = mat
	}
}

// WithGroundReceiveShadow sets whether the plane receives shadows.
func WithGroundReceiveShadow(receive bool) GroundBuilderOption {
	return func(g *groundParams) {
		g.receive = receive
	}
}
