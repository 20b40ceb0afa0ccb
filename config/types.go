package config

import (
	"fmt"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"gopkg.in/yaml.v3"
)

// Vec3 is an x, y, z triple written as a three element sequence.
type Vec3 [3]float32

// UnmarshalYAML decodes a three element sequence.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var seq []float32
	if err := value.Decode(&seq); err != nil {
		return fmt.Errorf("line %d: vector: %w", value.Line, err)
	}
	if len(seq) != 3 {
		return fmt.Errorf("line %d: vector wants 3 components, got %d", value.Line, len(seq))
	}
	copy(v[:], seq)
	return nil
}

// Scale is a per-axis scale. A scalar in the manifest scales all three axes uniformly.
type Scale [3]float32

// Uniform returns a Scale of s on every axis.
func Uniform(s float32) Scale {
	return Scale{s, s, s}
}

// UnmarshalYAML decodes either a scalar or a three element sequence.
func (s *Scale) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float32
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("line %d: scale: %w", value.Line, err)
		}
		*s = Uniform(f)
		return nil
	}
	var v Vec3
	if err := v.UnmarshalYAML(value); err != nil {
		return err
	}
	*s = Scale(v)
	return nil
}

// Color is an RGB color written as "#rrggbb", "0xrrggbb" or an integer.
type Color common.Color

// RGB returns the color as a common.Color.
func (c Color) RGB() common.Color {
	return common.Color(c)
}

// UnmarshalYAML decodes a textual or integer color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", value.Line)
	}
	if value.Tag == "!!int" {
		var hex uint32
		if err := value.Decode(&hex); err != nil {
			return fmt.Errorf("line %d: color: %w", value.Line, err)
		}
		*c = Color(common.ColorFromHex(hex))
		return nil
	}
	parsed, err := common.ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = Color(parsed)
	return nil
}

// MarshalYAML writes the color as "#rrggbb".
func (c Color) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%06x", c.RGB().Hex()), nil
}
