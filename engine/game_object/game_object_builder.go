package game_object

import (
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the name of the GameObject.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is drawn.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the model drawn by the GameObject.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithPosition sets the local offset of the GameObject.
//
// Parameters:
//   - pos: x, y, z
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(pos [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = pos
	}
}

// WithRotation sets the local XYZ Euler rotation of the GameObject in radians.
//
// Parameters:
//   - rot: rx, ry, rz
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(rot [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = rot
	}
}

// WithScale sets the local per-axis scale of the GameObject.
//
// Parameters:
//   - scale: sx, sy, sz
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(scale [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = scale
	}
}

// WithShadows sets the shadow flags of the GameObject.
//
// Parameters:
//   - cast: whether the object is drawn into the shadow map
//   - receive: whether the object samples the shadow map
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the shadow flags
func WithShadows(cast, receive bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.castShadow = cast
		obj.receiveShadow = receive
	}
}
