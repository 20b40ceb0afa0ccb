package loader

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
)

// mtlMaterial is one newmtl block.
type mtlMaterial struct {
	name       string
	ambient    common.Color
	diffuse    common.Color
	specular   common.Color
	emissive   common.Color
	shininess  float32
	opacity    float32
	refraction float32
	illum      int
	mapKd      string
	tiling     material.Tiling
}

// defaultMaterialColor is the light grey used when no material applies.
var defaultMaterialColor = common.Color{0xA0 / 255.0, 0xA0 / 255.0, 0xA0 / 255.0}

// DefaultMaterial returns a fresh light grey material.
//
// Returns:
//   - material.Material: the default material
func DefaultMaterial() material.Material {
	return material.NewMaterial(
		material.WithName("default"),
		material.WithColor(defaultMaterialColor),
		material.WithSpecular(common.Color{0x80 / 255.0, 0x80 / 255.0, 0x80 / 255.0}),
		material.WithShininess(30),
		material.WithDoubleSided(true),
	)
}

// MaterialLibrary is a decoded MTL file. Textures referenced by map_Kd are attached with SetTexture before
// Material builds the engine materials.
type MaterialLibrary struct {
	path      string
	materials map[string]*mtlMaterial
	textures  map[string]*common.TextureStagingData
	warnings  []string
}

// DecodeMTL parses an MTL payload. Unsupported keywords are collected as warnings.
//
// Parameters:
//   - path: the asset path, used for errors and to resolve map_Kd files
//   - data: the file contents
//
// Returns:
//   - *MaterialLibrary: the decoded library
//   - error: *ParseError on malformed input
func DecodeMTL(path string, data []byte) (*MaterialLibrary, error) {
	lib := &MaterialLibrary{
		path:      path,
		materials: make(map[string]*mtlMaterial),
		textures:  make(map[string]*common.TextureStagingData),
	}
	p := &lineParser{path: path, kind: "mtl"}
	var current *mtlMaterial

	err := p.parse(data, func(keyword string, fields []string) error {
		if keyword == "newmtl" {
			if len(fields) < 1 {
				return p.formatError("newmtl with no fields")
			}
			name := strings.Join(fields, " ")
			current = lib.materials[name]
			if current == nil {
				current = &mtlMaterial{
					name:      name,
					diffuse:   common.Color{1, 1, 1},
					shininess: 30,
					opacity:   1,
					tiling:    material.DefaultTiling,
				}
				lib.materials[name] = current
			}
			return nil
		}
		if current == nil {
			return p.formatError("'%s' before newmtl", keyword)
		}

		switch keyword {
		case "Ka", "Kd", "Ks", "Ke":
			v, err := p.floats(keyword, fields, 3)
			if err != nil {
				return err
			}
			c := common.Color{v[0], v[1], v[2]}
			switch keyword {
			case "Ka":
				current.ambient = c
			case "Kd":
				current.diffuse = c
			case "Ks":
				current.specular = c
			case "Ke":
				current.emissive = c
			}
		case "Ns", "Ni", "d":
			v, err := p.floats(keyword, fields, 1)
			if err != nil {
				return err
			}
			switch keyword {
			case "Ns":
				current.shininess = v[0]
			case "Ni":
				current.refraction = v[0]
			case "d":
				current.opacity = v[0]
			}
		case "illum":
			if len(fields) < 1 {
				return p.formatError("'illum' with no fields")
			}
			v, err := strconv.ParseUint(fields[0], 10, 32)
			if err != nil {
				return p.formatError("'illum' parse int error: %q", fields[0])
			}
			current.illum = int(v)
		case "map_Kd":
			return p.parseMapKd(current, fields)
		default:
			p.appendWarn("field not supported: %s", keyword)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	lib.warnings = p.warnings
	return lib, nil
}

// parseMapKd reads "map_Kd [-s u [v]] [-o u [v]] <file>".
func (p *lineParser) parseMapKd(m *mtlMaterial, fields []string) error {
	if len(fields) < 1 {
		return p.formatError("'map_Kd' with no fields")
	}
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, "-") || len(f) == 1 {
			m.mapKd = strings.Join(fields[i:], " ")
			return nil
		}
		switch f {
		case "-s", "-o":
			vals, consumed := leadingFloats(fields[i+1:], 3)
			if len(vals) == 0 {
				return p.formatError("'map_Kd %s' without values", f)
			}
			uv := [2]float32{vals[0], vals[0]}
			if len(vals) > 1 {
				uv[1] = vals[1]
			}
			if f == "-s" {
				m.tiling.Repeat = uv
			} else {
				m.tiling.Offset = uv
			}
			i += consumed
		default:
			p.appendWarn("map_Kd option not supported: %s", f)
			if i+1 < len(fields) {
				i++
			}
		}
	}
	return p.formatError("'map_Kd' without a file name")
}

// leadingFloats parses up to limit numeric fields, stopping at the first non-number. The last field is never
// consumed so a numeric file name is still read as the file.
func leadingFloats(fields []string, limit int) ([]float32, int) {
	var out []float32
	for i := 0; i < len(fields)-1 && i < limit; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			break
		}
		out = append(out, float32(v))
	}
	return out, len(out)
}

// Path returns the asset path the library was decoded from.
func (lib *MaterialLibrary) Path() string {
	return lib.path
}

// Warnings returns the unsupported-keyword warnings collected while decoding.
func (lib *MaterialLibrary) Warnings() []string {
	return lib.warnings
}

// Names returns the material names sorted.
//
// Returns:
//   - []string: the names
func (lib *MaterialLibrary) Names() []string {
	names := make([]string, 0, len(lib.materials))
	for name := range lib.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TexturePaths returns every map_Kd file resolved against the library's directory, sorted and deduplicated.
//
// Returns:
//   - []string: the texture asset paths
func (lib *MaterialLibrary) TexturePaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range lib.materials {
		if m.mapKd == "" {
			continue
		}
		p := resolveRelative(lib.path, m.mapKd)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// SetTexture attaches a decoded texture to every material whose map_Kd resolves to path.
//
// Parameters:
//   - path: a path returned by TexturePaths
//   - tex: the decoded texture
func (lib *MaterialLibrary) SetTexture(path string, tex *common.TextureStagingData) {
	lib.textures[path] = tex
}

// Material builds a fresh engine material for name.
//
// Parameters:
//   - name: the usemtl name
//
// Returns:
//   - material.Material: the material, or nil
//   - bool: whether the library defines name
func (lib *MaterialLibrary) Material(name string) (material.Material, bool) {
	m, ok := lib.materials[name]
	if !ok {
		return nil, false
	}
	opts := []material.MaterialBuilderOption{
		material.WithName(m.name),
		material.WithColor(m.diffuse),
		material.WithSpecular(m.specular),
		material.WithEmissive(m.emissive),
		material.WithShininess(m.shininess),
		material.WithOpacity(m.opacity),
		material.WithTiling(m.tiling),
		material.WithDoubleSided(true),
	}
	if m.mapKd != "" {
		opts = append(opts, material.WithTexture(lib.textures[resolveRelative(lib.path, m.mapKd)]))
	}
	return material.NewMaterial(opts...), true
}
