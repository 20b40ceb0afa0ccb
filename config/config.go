// Package config describes the diorama manifest: window, renderer, camera, lights, ground,
// placement groups, and the asset list that is iterated once at startup.
package config

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/jinzhu/copier"
)

// DefaultTint is applied to texture-only assets that do not name a tint.
const DefaultTint uint32 = 0x629163

// Scene is the root of a manifest.
type Scene struct {
	Window   Window           `yaml:"window"`
	Renderer Renderer         `yaml:"renderer"`
	Loader   Loader           `yaml:"loader"`
	Camera   Camera           `yaml:"camera"`
	Lights   Lights           `yaml:"lights"`
	Ground   Ground           `yaml:"ground"`
	Groups   map[string]Group `yaml:"groups"`
	Defaults Placement        `yaml:"defaults"`
	Assets   map[string]Asset `yaml:"assets"`
}

// Window holds the initial surface size. It is read once and not re-read on resize.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Renderer holds GPU presentation settings.
type Renderer struct {
	MSAA       int   `yaml:"msaa"`
	VSync      bool  `yaml:"vsync"`
	Shadows    bool  `yaml:"shadows"`
	ClearColor Color `yaml:"clearColor"`
	FrameLimit int   `yaml:"frameLimit"`
}

// Loader holds asset loading settings.
type Loader struct {
	Workers        int `yaml:"workers"`
	MaxTextureSize int `yaml:"maxTextureSize"`
}

// Camera holds the perspective camera and orbit controller constants.
type Camera struct {
	Fov           float32 `yaml:"fov"` // degrees
	Near          float32 `yaml:"near"`
	Far           float32 `yaml:"far"`
	Position      Vec3    `yaml:"position"`
	Target        Vec3    `yaml:"target"`
	Damping       bool    `yaml:"damping"`
	DampingFactor float32 `yaml:"dampingFactor"`
	RotateSpeed   float32 `yaml:"rotateSpeed"`
	ZoomSpeed     float32 `yaml:"zoomSpeed"`
	PanSpeed      float32 `yaml:"panSpeed"`
	MinDistance   float32 `yaml:"minDistance"`
	MaxDistance   float32 `yaml:"maxDistance"`
}

// Lights holds the ambient term and the single shadow-casting point light.
type Lights struct {
	Ambient Ambient    `yaml:"ambient"`
	Point   PointLight `yaml:"point"`
}

// Ambient is a uniform light applied to every surface.
type Ambient struct {
	Color     Color   `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

// PointLight is an omni light with distance falloff.
type PointLight struct {
	Color      Color   `yaml:"color"`
	Intensity  float32 `yaml:"intensity"`
	Distance   float32 `yaml:"distance"`
	Decay      float32 `yaml:"decay"`
	Position   Vec3    `yaml:"position"`
	CastShadow bool    `yaml:"castShadow"`
	Shadow     Shadow  `yaml:"shadow"`
}

// Shadow holds the shadow map resolution and the near/far planes of the shadow cameras.
type Shadow struct {
	MapSize int     `yaml:"mapSize"`
	Near    float32 `yaml:"near"`
	Far     float32 `yaml:"far"`
	Bias    float32 `yaml:"bias"`
}

// Ground is the large textured plane under the diorama.
type Ground struct {
	Texture       string     `yaml:"texture"`
	Repeat        [2]float32 `yaml:"repeat"`
	Size          [2]float32 `yaml:"size"`
	Segments      [2]int     `yaml:"segments"`
	Position      Vec3       `yaml:"position"`
	Rotation      Vec3       `yaml:"rotation"`
	Color         Color      `yaml:"color"`
	DoubleSided   bool       `yaml:"doubleSided"`
	ReceiveShadow bool       `yaml:"receiveShadow"`
}

// Group is a named placement container. Its transform applies to every object appended to it.
type Group struct {
	Position Vec3   `yaml:"position"`
	Rotation Vec3   `yaml:"rotation"`
	Scale    *Scale `yaml:"scale,omitempty"`
}

// AssetDescriptor names the files of one visual asset. Material and Texture are mutually exclusive.
type AssetDescriptor struct {
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material,omitempty"`
	Texture  string `yaml:"texture,omitempty"`
}

// Asset binds a descriptor to a group and a placement.
type Asset struct {
	AssetDescriptor `yaml:",inline"`
	Group           string    `yaml:"group"`
	Placement       Placement `yaml:"placement"`
}

// Placement is the per-asset transform and shading override. Nil fields fall back to the manifest defaults,
// then to the descriptor-kind defaults applied by Resolve.
type Placement struct {
	Scale         *Scale `yaml:"scale,omitempty"`
	Position      *Vec3  `yaml:"position,omitempty"`
	Rotation      *Vec3  `yaml:"rotation,omitempty"`
	Tint          *Color `yaml:"tint,omitempty"`
	CastShadow    *bool  `yaml:"castShadow,omitempty"`
	ReceiveShadow *bool  `yaml:"receiveShadow,omitempty"`
}

// ResolvedPlacement is a Placement with every field decided.
type ResolvedPlacement struct {
	Scale         [3]float32
	Position      [3]float32
	Rotation      [3]float32
	Tint          *common.Color
	CastShadow    bool
	ReceiveShadow bool
}

// Resolve decides every placement field. Fields the asset leaves empty are taken from defaults, then from the
// descriptor kind: texture-only assets cast but do not receive shadows and are tinted DefaultTint,
// material-described assets cast and receive and keep their MTL colors, bare meshes cast only.
//
// Parameters:
//   - defaults: the manifest-level placement
//
// Returns:
//   - ResolvedPlacement: the decided placement
func (a Asset) Resolve(defaults Placement) ResolvedPlacement {
	r := ResolvedPlacement{Scale: [3]float32{1, 1, 1}, CastShadow: true}
	switch {
	case a.Material != "":
		r.ReceiveShadow = true
	case a.Texture != "":
		tint := common.ColorFromHex(DefaultTint)
		r.Tint = &tint
	}

	p := mergePlacement(defaults, a.Placement)
	if p.Scale != nil {
		r.Scale = [3]float32(*p.Scale)
	}
	if p.Position != nil {
		r.Position = [3]float32(*p.Position)
	}
	if p.Rotation != nil {
		r.Rotation = [3]float32(*p.Rotation)
	}
	if p.Tint != nil {
		tint := p.Tint.RGB()
		r.Tint = &tint
	}
	if p.CastShadow != nil {
		r.CastShadow = *p.CastShadow
	}
	if p.ReceiveShadow != nil {
		r.ReceiveShadow = *p.ReceiveShadow
	}
	return r
}

// mergePlacement overlays the non-empty fields of override onto a copy of base.
func mergePlacement(base, override Placement) Placement {
	merged := Placement{}
	opt := copier.Option{IgnoreEmpty: true}
	if err := copier.CopyWithOption(&merged, &base, opt); err != nil {
		log.Printf("[Config] failed to copy default placement: %v", err)
		return override
	}
	if err := copier.CopyWithOption(&merged, &override, opt); err != nil {
		log.Printf("[Config] failed to merge placement: %v", err)
		return override
	}
	return merged
}

// AssetNames returns the asset names in sorted order so startup iteration is deterministic.
func (s Scene) AssetNames() []string {
	names := make([]string, 0, len(s.Assets))
	for name := range s.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupNames returns the group names in sorted order.
func (s Scene) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks cross references and value ranges.
//
// Returns:
//   - error: every violation joined, or nil
func (s Scene) Validate() error {
	var errs []error
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		errs = append(errs, fmt.Errorf("camera planes near=%g far=%g are invalid", s.Camera.Near, s.Camera.Far))
	}
	switch s.Renderer.MSAA {
	case 0, 1, 4, 8, 16:
	default:
		errs = append(errs, fmt.Errorf("renderer msaa %d is not one of 1, 4, 8, 16", s.Renderer.MSAA))
	}
	for _, name := range s.AssetNames() {
		a := s.Assets[name]
		if a.Mesh == "" {
			errs = append(errs, fmt.Errorf("asset %q has no mesh", name))
		}
		if a.Material != "" && a.Texture != "" {
			errs = append(errs, fmt.Errorf("asset %q sets both material and texture", name))
		}
		if _, ok := s.Groups[a.Group]; !ok {
			errs = append(errs, fmt.Errorf("asset %q references undeclared group %q", name, a.Group))
		}
	}
	return errors.Join(errs...)
}
