package light

import "github.com/Carmen-Shannon/tank-diorama/common"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - c: the light color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity is an option builder that sets the intensity multiplier of the light.
//
// Parameters:
//   - intensity: the intensity
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithDistance is an option builder that sets the range of a point light. Zero disables the falloff.
//
// Parameters:
//   - distance: the range in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the distance option to a lightImpl
func WithDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.distance = max(distance, 0)
	}
}

// WithDecay is an option builder that sets the falloff exponent of a point light.
//
// Parameters:
//   - decay: the exponent
//
// Returns:
//   - LightBuilderOption: a function that applies the decay option to a lightImpl
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = decay
	}
}

// WithCastsShadows is an option builder that enables shadow map rendering for a point light.
//
// Parameters:
//   - casts: true to render shadows
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow flag to a lightImpl
func WithCastsShadows(casts bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = casts
	}
}

// WithShadow is an option builder that sets the shadow map resolution, planes and bias.
// Zero fields keep their defaults.
//
// Parameters:
//   - cfg: the shadow settings
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow settings to a lightImpl
func WithShadow(cfg ShadowConfig) LightBuilderOption {
	return func(l *lightImpl) {
		def := DefaultShadowConfig()
		l.shadow = ShadowConfig{
			MapSize: common.Coalesce(cfg.MapSize, def.MapSize),
			Near:    common.Coalesce(cfg.Near, def.Near),
			Far:     common.Coalesce(cfg.Far, def.Far),
			Bias:    common.Coalesce(cfg.Bias, def.Bias),
		}
	}
}
