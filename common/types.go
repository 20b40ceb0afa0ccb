package common

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds decoded RGBA8 pixel data ready for GPU upload.
type TextureStagingData struct {
	// Name identifies the texture in GPU labels and caches, usually its source path.
	Name string
	// Pixels is tightly packed RGBA8 in upload order. Decoded images are flipped so row 0 is the
	// bottom image row, matching v = 0 in mesh uvs.
	Pixels []byte
	Width  uint32
	Height uint32
}

// SamplerStagingData describes sampler state. Zero fields fall back to repeat addressing and linear filtering.
type SamplerStagingData struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	Compare                                  wgpu.CompareFunction
}

// Color is a linear RGB triple in [0, 1].
type Color [3]float32

// ColorFromHex converts a 0xRRGGBB value into a Color.
//
// Parameters:
//   - hex: packed 24-bit color
//
// Returns:
//   - Color: the unpacked color
func ColorFromHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xFF) / 255.0,
		float32((hex>>8)&0xFF) / 255.0,
		float32(hex&0xFF) / 255.0,
	}
}

// ParseColor parses "#rrggbb", "0xrrggbb" or "rrggbb".
//
// Parameters:
//   - s: the textual color
//
// Returns:
//   - Color: the parsed color
//   - error: error if s is not a 24-bit hex color
func ParseColor(s string) (Color, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	if len(v) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	hex, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return ColorFromHex(uint32(hex)), nil
}

// Hex packs the color back into 0xRRGGBB, rounding each channel.
func (c Color) Hex() uint32 {
	var out uint32
	for _, ch := range c {
		v := ch*255 + 0.5
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out = out<<8 | uint32(v)
	}
	return out
}

// Scale returns the color multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s}
}

// Coalesce returns the first non-zero value, or the zero value if all are zero.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// AppendFloat32s appends the little-endian IEEE-754 encoding of each value, the layout WGSL expects for f32.
//
// Parameters:
//   - buf: the buffer to append to
//   - values: the values to encode
//
// Returns:
//   - []byte: the extended buffer
func AppendFloat32s(buf []byte, values ...float32) []byte {
	for _, f := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}
