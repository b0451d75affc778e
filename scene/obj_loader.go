package scene

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/core"
	"deferred-engine/internal/logger"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

type objObject struct {
	name    string
	matName string
	faces   []objFace
}

// LoadOBJ parses a Wavefront .obj file into one SubMesh per object/group and
// material switch. Materials come from any "mtllib" referenced by the file.
func LoadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	s := &Scene{Path: path}
	matIndex := map[string]int{}

	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	var objects []objObject
	cur := &objObject{name: "default"}
	push := func(name, mat string) {
		if len(cur.faces) > 0 {
			objects = append(objects, *cur)
		}
		cur = &objObject{name: name, matName: mat}
	}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			if p, ok := parseVec3(fields); ok {
				positions = append(positions, p)
			}

		case "vn":
			if n, ok := parseVec3(fields); ok {
				normals = append(normals, n)
			}

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})

		case "o", "g":
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			push(name, cur.matName)

		case "usemtl":
			if len(fields) > 1 && fields[1] != cur.matName {
				push(cur.name, fields[1])
			}

		case "mtllib":
			for _, lib := range fields[1:] {
				mats, err := loadMTL(filepath.Join(dir, lib))
				if err != nil {
					logger.Log.Warn("obj mtllib", zap.String("path", lib), zap.Error(err))
					continue
				}
				for _, m := range mats {
					matIndex[m.Name] = len(s.Materials)
					s.Materials = append(s.Materials, m)
				}
			}

		case "f":
			// Fan-triangulate polygon (handles 3+ vertices)
			if len(fields) < 4 {
				continue
			}
			fverts := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q line %d: %w", path, line, err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}

	for _, obj := range objects {
		sm := buildSubMesh(obj.name, obj.faces, positions, normals, uvs)
		sm.MaterialIndex = -1
		if idx, ok := matIndex[obj.matName]; ok {
			sm.MaterialIndex = idx
		}
		s.Meshes = append(s.Meshes, sm)
	}
	return s, nil
}

func parseVec3(fields []string) (mgl32.Vec3, bool) {
	if len(fields) < 4 {
		return mgl32.Vec3{}, false
	}
	x, _ := strconv.ParseFloat(fields[1], 32)
	y, _ := strconv.ParseFloat(fields[2], 32)
	z, _ := strconv.ParseFloat(fields[3], 32)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}, true
}

type objRef struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). Negative OBJ indices count back
// from the end of the respective list.
func parseFaceVertex(tok string, nv, nvt, nvn int) objRef {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil || i == 0:
			return -1
		case i > 0:
			return i - 1
		default:
			return n + i
		}
	}
	parts := strings.Split(tok, "/")
	res := objRef{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nv)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildSubMesh converts parsed faces into indexed geometry, sharing vertices
// with identical position/uv/normal references.
func buildSubMesh(name string, faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) SubMesh {
	vertMap := map[objRef]uint32{}
	var vertices []core.Vertex
	var indices []uint32
	missingNormals := false

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := objRef{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			if idx, ok := vertMap[k]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Color: core.White}
			if k.v >= 0 && k.v < len(positions) {
				v.Position = positions[k.v]
			}
			if k.vt >= 0 && k.vt < len(uvs) {
				v.UV = uvs[k.vt]
			}
			if k.vn >= 0 && k.vn < len(normals) {
				v.Normal = normals[k.vn]
			} else {
				missingNormals = true
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, v)
			vertMap[k] = idx
			indices = append(indices, idx)
		}
	}

	if missingNormals {
		GenerateNormals(vertices, indices)
	}
	return SubMesh{Name: name, Vertices: vertices, Indices: indices}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

var mtlTextures = map[string]TextureType{
	"map_Kd":   TextureDiffuse,
	"map_Ks":   TextureSpecular,
	"map_Ka":   TextureAmbient,
	"map_Ke":   TextureEmissive,
	"map_Ns":   TextureShininess,
	"map_d":    TextureOpacity,
	"map_Bump": TextureHeight,
	"map_bump": TextureHeight,
	"bump":     TextureHeight,
	"norm":     TextureNormal,
	"disp":     TextureDisplacement,
}

func loadMTL(path string) ([]MaterialData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mats []MaterialData
	var cur *MaterialData

	color := func(fields []string) (core.Color, bool) {
		if len(fields) < 4 {
			return core.Color{}, false
		}
		r, _ := strconv.ParseFloat(fields[1], 32)
		g, _ := strconv.ParseFloat(fields[2], 32)
		b, _ := strconv.ParseFloat(fields[3], 32)
		return core.Color{R: float32(r), G: float32(g), B: float32(b), A: 1}, true
	}
	scalar := func(fields []string) (float32, bool) {
		if len(fields) < 2 {
			return 0, false
		}
		v, err := strconv.ParseFloat(fields[1], 32)
		return float32(v), err == nil
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				mats = append(mats, DefaultMaterialData(fields[1]))
				cur = &mats[len(mats)-1]
			}
			continue
		}
		if cur == nil {
			continue
		}

		switch fields[0] {
		case "Kd":
			if c, ok := color(fields); ok {
				cur.Diffuse = c
			}
		case "Ka":
			if c, ok := color(fields); ok {
				cur.Ambient = c
			}
		case "Ks":
			if c, ok := color(fields); ok {
				cur.Specular = c
			}
		case "Ke":
			if c, ok := color(fields); ok {
				cur.Emissive = c
			}
		case "Ns":
			if v, ok := scalar(fields); ok {
				cur.Shininess = float32(math.Max(1, float64(v)))
			}
		case "d":
			if v, ok := scalar(fields); ok {
				cur.Opacity = v
			}
		case "Tr":
			if v, ok := scalar(fields); ok {
				cur.Opacity = 1 - v
			}
		default:
			if typ, ok := mtlTextures[fields[0]]; ok && len(fields) > 1 {
				// Options such as "-bm 1" precede the file name.
				cur.AddTexture(typ, fields[len(fields)-1])
			}
		}
	}
	return mats, scanner.Err()
}
