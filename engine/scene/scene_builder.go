package scene

import (
	"github.com/Carmen-Shannon/tank-diorama/engine/game_object"
	"github.com/Carmen-Shannon/tank-diorama/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene name.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithAmbient sets the ambient light.
//
// Parameters:
//   - l: an ambient light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbient(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = l
	}
}

// WithPointLight sets the shadow-casting point light.
//
// Parameters:
//   - l: a point light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPointLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.point = l
	}
}

// WithGround sets the ground object, usually built by NewGround.
//
// Parameters:
//   - ground: the ground object
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGround(ground game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		s.ground = ground
	}
}

// WithGroups registers detached groups up front.
//
// Parameters:
//   - groups: the groups to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGroups(groups ...Group) SceneBuilderOption {
	return func(s *scene) {
		for _, g := range groups {
			if g != nil {
				s.groups[g.Name()] = g
			}
		}
	}
}
