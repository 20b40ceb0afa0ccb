package loader

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/model"
	"github.com/Carmen-Shannon/tank-diorama/engine/renderer/material"
)

// objFace is one "f" line. Missing uv and normal references are -1.
type objFace struct {
	vertices []int
	uvs      []int
	normals  []int
	material string
}

// objObject collects the faces declared under one "o" or "g" line.
type objObject struct {
	name  string
	faces []objFace
}

type objDecoder struct {
	lineParser
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	objects   []*objObject
	current   *objObject
	material  string
	mtllibs   []string
}

// DecodedOBJ is the result of DecodeOBJ.
type DecodedOBJ struct {
	Model        model.Model
	MaterialLibs []string
	Warnings     []string
}

// DecodeOBJ parses an OBJ payload into one mesh per run of faces sharing an object and a material. Polygons are
// triangulated as fans, negative indices are relative to the end of the list so far, and faces without
// normals get flat normals. Materials come from lib; without a library every mesh gets the default material.
//
// Parameters:
//   - name: the model name
//   - path: the asset path, used for errors
//   - data: the file contents
//   - lib: the preloaded material library, or nil
//
// Returns:
//   - *DecodedOBJ: the model plus the mtllib references and warnings
//   - error: *ParseError on malformed input
func DecodeOBJ(name, path string, data []byte, lib *MaterialLibrary) (*DecodedOBJ, error) {
	dec := &objDecoder{lineParser: lineParser{path: path, kind: "obj"}}
	if err := dec.parse(data, dec.parseObjLine); err != nil {
		return nil, err
	}

	meshes := dec.buildMeshes(lib)
	if len(meshes) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("no faces")}
	}
	if name == "" {
		name = strings.TrimSuffix(path, ".obj")
	}
	return &DecodedOBJ{
		Model:        model.NewModel(model.WithName(name), model.WithMeshes(meshes...)),
		MaterialLibs: dec.mtllibs,
		Warnings:     dec.warnings,
	}, nil
}

func (dec *objDecoder) parseObjLine(keyword string, fields []string) error {
	switch keyword {
	case "mtllib":
		if len(fields) < 1 {
			return dec.formatError("material library (mtllib) with no fields")
		}
		dec.mtllibs = append(dec.mtllibs, strings.Join(fields, " "))
	case "o", "g":
		objName := fmt.Sprintf("unnamed%d", dec.line)
		if len(fields) > 0 {
			objName = strings.Join(fields, " ")
		}
		dec.startObject(objName)
	case "v":
		v, err := dec.floats(keyword, fields, 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.floats(keyword, fields, 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.floats(keyword, fields, 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, [2]float32{v[0], v[1]})
	case "f":
		return dec.parseFace(fields)
	case "usemtl":
		if len(fields) < 1 {
			return dec.formatError("usemtl with no fields")
		}
		dec.material = strings.Join(fields, " ")
	case "s":
		// smoothing groups are accepted but normals always come from vn or the flat face normal
		if len(fields) < 1 {
			return dec.formatError("'s' with no fields")
		}
	default:
		dec.appendWarn("field not supported: %s", keyword)
	}
	return nil
}

func (dec *objDecoder) startObject(name string) {
	dec.current = &objObject{name: name}
	dec.objects = append(dec.objects, dec.current)
}

// parseFace reads "f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...".
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face line with less than 3 fields")
	}
	if dec.current == nil {
		dec.startObject(strings.TrimSuffix(path.Base(dec.path), path.Ext(dec.path)))
	}

	face := objFace{
		vertices: make([]int, len(fields)),
		uvs:      make([]int, len(fields)),
		normals:  make([]int, len(fields)),
		material: dec.material,
	}
	for i, f := range fields {
		parts := strings.Split(f, "/")
		v, err := dec.index("vertex", parts[0], len(dec.positions))
		if err != nil {
			return err
		}
		face.vertices[i] = v

		face.uvs[i] = -1
		if len(parts) > 1 && parts[1] != "" {
			if face.uvs[i], err = dec.index("uv", parts[1], len(dec.uvs)); err != nil {
				return err
			}
		}
		face.normals[i] = -1
		if len(parts) > 2 && parts[2] != "" {
			if face.normals[i], err = dec.index("normal", parts[2], len(dec.normals)); err != nil {
				return err
			}
		}
	}
	dec.current.faces = append(dec.current.faces, face)
	return nil
}

// index resolves a 1-based or negative relative OBJ index against the count parsed so far.
func (dec *objDecoder) index(kind, field string, count int) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, dec.formatError("face %s index %q", kind, field)
	}
	var idx int
	switch {
	case v > 0:
		idx = v - 1
	case v < 0:
		idx = count + v
	default:
		return 0, dec.formatError("face %s index value equal to 0", kind)
	}
	if idx < 0 || idx >= count {
		return 0, dec.formatError("face %s index %d out of range (%d defined)", kind, v, count)
	}
	return idx, nil
}

type vertexKey struct {
	v, vt, vn int
}

// meshBuilder accumulates one output mesh.
type meshBuilder struct {
	name     string
	key      string
	material material.Material
	vertices []model.GPUVertex
	indices  []uint32
	shared   map[vertexKey]uint32
}

func (dec *objDecoder) buildMeshes(lib *MaterialLibrary) []*model.Mesh {
	materials := make(map[string]material.Material)
	resolve := func(name, objName string) material.Material {
		if mat, ok := materials[name]; ok {
			return mat
		}
		var mat material.Material
		if name != "" && lib != nil {
			var ok bool
			if mat, ok = lib.Material(name); !ok {
				dec.warnings = append(dec.warnings, fmt.Sprintf(
					"obj: could not find material: %s for object %s. using default material.", name, objName))
			}
		}
		if mat == nil {
			mat = DefaultMaterial()
		}
		materials[name] = mat
		return mat
	}

	var meshes []*model.Mesh
	for _, obj := range dec.objects {
		var mb *meshBuilder
		run := 0
		flush := func() {
			if mb != nil && len(mb.indices) > 0 {
				meshes = append(meshes, model.NewMesh(mb.name, mb.vertices, mb.indices, mb.material))
			}
		}
		for fi := range obj.faces {
			face := &obj.faces[fi]
			if mb == nil || face.material != mb.key {
				flush()
				mb = &meshBuilder{
					name:     fmt.Sprintf("%s_%d", obj.name, run),
					key:      face.material,
					material: resolve(face.material, obj.name),
					shared:   make(map[vertexKey]uint32),
				}
				run++
			}
			for i := 1; i+1 < len(face.vertices); i++ {
				dec.addTriangle(mb, face, [3]int{0, i, i + 1})
			}
		}
		flush()
	}
	return meshes
}

// addTriangle emits one triangle of a face. Corners with a normal reference are shared across the mesh; corners
// without one get the flat triangle normal and are never shared.
func (dec *objDecoder) addTriangle(mb *meshBuilder, face *objFace, corners [3]int) {
	var flat [3]float32
	needsFlat := false
	for _, c := range corners {
		if face.normals[c] < 0 {
			needsFlat = true
		}
	}
	if needsFlat {
		a := dec.positions[face.vertices[corners[0]]]
		b := dec.positions[face.vertices[corners[1]]]
		c := dec.positions[face.vertices[corners[2]]]
		flat = common.Cross3(common.Sub3(b, a), common.Sub3(c, a))
		if common.Length3(flat) < 1e-12 {
			flat = [3]float32{0, 1, 0}
		} else {
			flat = common.Normalize3(flat)
		}
	}

	for _, c := range corners {
		key := vertexKey{v: face.vertices[c], vt: face.uvs[c], vn: face.normals[c]}
		if key.vn >= 0 {
			if idx, ok := mb.shared[key]; ok {
				mb.indices = append(mb.indices, idx)
				continue
			}
		}

		vert := model.GPUVertex{Position: dec.positions[key.v], Normal: flat}
		if key.vn >= 0 {
			vert.Normal = dec.normals[key.vn]
		}
		if key.vt >= 0 {
			vert.TexCoord = dec.uvs[key.vt]
		}
		idx := uint32(len(mb.vertices))
		mb.vertices = append(mb.vertices, vert)
		mb.indices = append(mb.indices, idx)
		if key.vn >= 0 {
			mb.shared[key] = idx
		}
	}
}
