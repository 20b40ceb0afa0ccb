package light

import (
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every fragment uniformly, with no position and no shadows.
	LightTypeAmbient LightType = iota

	// LightTypePoint emits in all directions from a position and fades to zero at its distance.
	// It is the only light type that casts shadows.
	LightTypePoint
)

func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypePoint:
		return "point"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu           *sync.RWMutex
	lightType    LightType
	position     [3]float32
	color        common.Color
	intensity    float32
	distance     float32
	decay        float32
	castsShadows bool
	shadow       ShadowConfig
}

// Light defines the interface for a light source in the scene.
//
// Type-specific properties return zero values when not applicable, e.g. the position of an ambient light.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: ambient or point
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - common.Color: the color
	Color() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Distance returns the range of a point light. Zero means the light never fades.
	//
	// Returns:
	//   - float32: the distance
	Distance() float32

	// Decay returns the falloff exponent applied over Distance.
	//
	// Returns:
	//   - float32: the decay exponent
	Decay() float32

	// CastsShadows returns whether the light renders a shadow map. Always false for ambient lights.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// Shadow returns the shadow map settings.
	//
	// Returns:
	//   - ShadowConfig: resolution, planes and bias
	Shadow() ShadowConfig

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - c: the color
	SetColor(c common.Color)

	// SetIntensity sets the intensity multiplier.
	//
	// Parameters:
	//   - intensity: the new intensity
	SetIntensity(intensity float32)
}

var _ Light = &lightImpl{}

// NewLight creates a new white Light of the given type with unit intensity, configured with the given options.
//
// Parameters:
//   - lightType: the kind of light
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.RWMutex{},
		lightType: lightType,
		color:     common.Color{1, 1, 1},
		intensity: 1,
		decay:     1,
		shadow:    DefaultShadowConfig(),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.lightType == LightTypeAmbient {
		l.castsShadows = false
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *lightImpl) Color() common.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *lightImpl) Distance() float32 {
	return l.distance
}

func (l *lightImpl) Decay() float32 {
	return l.decay
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Shadow() ShadowConfig {
	return l.shadow
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(c common.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}
