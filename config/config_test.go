package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScene(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height)
	assert.Equal(t, float32(45), s.Camera.Fov)
	assert.Equal(t, Vec3{1, 4, 12}, s.Camera.Position)
	assert.Equal(t, uint32(0x444444), s.Lights.Ambient.Color.RGB().Hex())
	assert.Equal(t, float32(0.8), s.Lights.Ambient.Intensity)
	assert.Equal(t, 1024, s.Lights.Point.Shadow.MapSize)
	assert.Equal(t, float32(0.5), s.Lights.Point.Shadow.Near)
	assert.Equal(t, float32(500), s.Lights.Point.Shadow.Far)
	assert.Equal(t, [2]float32{8, 8}, s.Ground.Repeat)
	assert.Equal(t, Vec3{0, 1.9, 0}, s.Groups["tank"].Rotation)
	assert.Equal(t, []string{"grass", "rock", "tank", "tree", "turret"}, s.AssetNames())
	assert.Equal(t, []string{"grass", "rocks", "tank", "tree", "turret"}, s.GroupNames())
}

func TestDecodeYAMLScalarAndVectorScale(t *testing.T) {
	doc := `
groups:
  g: {position: [0, 0, 0], rotation: [0, 0, 0]}
assets:
  a:
    mesh: a.obj
    group: g
    placement: {scale: 2}
  b:
    mesh: b.obj
    group: g
    placement: {scale: [1, 2, 3], tint: 0x629163}
`
	s, err := Decode([]byte(doc), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, Scale{2, 2, 2}, *s.Assets["a"].Placement.Scale)
	assert.Equal(t, Scale{1, 2, 3}, *s.Assets["b"].Placement.Scale)
	assert.Equal(t, uint32(0x629163), s.Assets["b"].Placement.Tint.RGB().Hex())

	// sections the manifest omits keep the built-in constants
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, float32(4000), s.Camera.Far)
}

func TestDecodeTOML(t *testing.T) {
	doc := `
[window]
title = "toml"
width = 640
height = 480

[groups.tank]
position = [1.0, 0.0, 1.0]
rotation = [0.0, 1.9, 0.0]

[assets.tank]
mesh = "Tank.obj"
texture = "Tank_texture.jpg"
group = "tank"

[assets.tank.placement]
scale = 4
tint = 0x629163
position = [1, 1, 1]
`
	s, err := Decode([]byte(doc), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "toml", s.Window.Title)
	assert.Equal(t, 640, s.Window.Width)
	require.Contains(t, s.Assets, "tank")
	tank := s.Assets["tank"]
	assert.Equal(t, "Tank_texture.jpg", tank.Texture)
	assert.Equal(t, Scale{4, 4, 4}, *tank.Placement.Scale)
	assert.Equal(t, Vec3{1, 1, 1}, *tank.Placement.Position)
	assert.Equal(t, uint32(0x629163), tank.Placement.Tint.RGB().Hex())
	assert.Equal(t, Vec3{1, 0, 1}, s.Groups["tank"].Position)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("window: {colour: red}\n"), FormatYAML)
	assert.Error(t, err)
}

func TestResolveByDescriptorKind(t *testing.T) {
	textured := Asset{AssetDescriptor: AssetDescriptor{Mesh: "t.obj", Texture: "t.jpg"}}
	r := textured.Resolve(Placement{})
	assert.True(t, r.CastShadow)
	assert.False(t, r.ReceiveShadow)
	require.NotNil(t, r.Tint)
	assert.Equal(t, DefaultTint, r.Tint.Hex())
	assert.Equal(t, [3]float32{1, 1, 1}, r.Scale)

	described := Asset{AssetDescriptor: AssetDescriptor{Mesh: "t.obj", Material: "t.mtl"}}
	r = described.Resolve(Placement{})
	assert.True(t, r.CastShadow)
	assert.True(t, r.ReceiveShadow)
	assert.Nil(t, r.Tint)

	bare := Asset{AssetDescriptor: AssetDescriptor{Mesh: "t.obj"}}
	r = bare.Resolve(Placement{})
	assert.True(t, r.CastShadow)
	assert.False(t, r.ReceiveShadow)
	assert.Nil(t, r.Tint)
}

func TestResolveMergesDefaults(t *testing.T) {
	no := false
	defaultScale := Uniform(3)
	defaultPos := Vec3{9, 9, 9}
	defaults := Placement{Scale: &defaultScale, Position: &defaultPos, CastShadow: &no}

	pos := Vec3{1, 2, 3}
	asset := Asset{
		AssetDescriptor: AssetDescriptor{Mesh: "t.obj", Material: "t.mtl"},
		Placement:       Placement{Position: &pos},
	}
	r := asset.Resolve(defaults)

	assert.Equal(t, [3]float32{3, 3, 3}, r.Scale)
	assert.Equal(t, [3]float32{1, 2, 3}, r.Position)
	assert.False(t, r.CastShadow)
	assert.True(t, r.ReceiveShadow)

	// the defaults themselves are left untouched
	assert.Equal(t, Vec3{9, 9, 9}, *defaults.Position)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Assets["bad-group"] = Asset{AssetDescriptor: AssetDescriptor{Mesh: "x.obj"}, Group: "missing"}
	s.Assets["both"] = Asset{AssetDescriptor: AssetDescriptor{Mesh: "x.obj", Material: "x.mtl", Texture: "x.png"}, Group: "tank"}
	s.Assets["no-mesh"] = Asset{Group: "tank"}
	s.Window.Width = 0

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared group "missing"`)
	assert.Contains(t, err.Error(), `"both" sets both material and texture`)
	assert.Contains(t, err.Error(), `"no-mesh" has no mesh`)
	assert.Contains(t, err.Error(), "window size")
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte("window: {title: file, width: 10, height: 10}\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", s.Window.Title)
	assert.Empty(t, s.Assets)

	_, err = Load(filepath.Join(dir, "scene.json"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestColorForms(t *testing.T) {
	s, err := Decode([]byte(`lights: {ambient: {color: "0x102030"}}`+"\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x102030), s.Lights.Ambient.Color.RGB().Hex())

	out, err := Color(common.ColorFromHex(0xABCDEF)).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", out)
}
