package scene

// GroupBuilderOption is a functional option for configuring a Group.
type GroupBuilderOption func(*group)

// WithGroupPosition sets the group translation.
//
// Parameters:
//   - pos: x, y, z
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupPosition(pos [3]float32) GroupBuilderOption {
	return func(g *group) {
		g.position = pos
	}
}

// WithGroupRotation sets the group XYZ Euler rotation in radians.
//
// Parameters:
//   - rot: rx, ry, rz
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupRotation(rot [3]float32) GroupBuilderOption {
	return func(g *group) {
		g.rotation = rot
	}
}

// WithGroupScale sets the group scale.
//
// Parameters:
//   - scale: sx, sy, sz
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupScale(scale [3]float32) GroupBuilderOption {
	return func(g *group) {
		g.scale = scale
	}
}
