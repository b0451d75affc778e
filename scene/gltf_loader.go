package scene

import (
	"fmt"
	"net/url"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"deferred-engine/core"
	"deferred-engine/internal/logger"
)

// LoadGLTF imports a .gltf or .glb file. Node transforms are baked into the
// vertices, so every SubMesh is in model space. Punctual lights
// (KHR_lights_punctual) become LightData positioned by their node.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	s := &Scene{Path: path}

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texPaths := make([]string, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		switch {
		case img.BufferView != nil:
			bv, err := gltfBufferView(doc, *img.BufferView)
			var raw []byte
			if err == nil {
				raw, err = modeler.ReadBufferView(doc, bv)
			}
			if err != nil {
				logger.Log.Warn("gltf image bufferview", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
			texPaths[i] = s.Embed(raw)
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err != nil {
				logger.Log.Warn("gltf image data uri", zap.Int("image", *gt.Source), zap.Error(err))
				continue
			}
			texPaths[i] = s.Embed(raw)
		case img.URI != "":
			uri, err := url.PathUnescape(img.URI)
			if err != nil {
				uri = img.URI
			}
			texPaths[i] = uri
		}
	}
	texPath := func(idx int) string {
		if idx >= 0 && idx < len(texPaths) {
			return texPaths[idx]
		}
		return ""
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	for i, gm := range doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		md := DefaultMaterialData(name)

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			md.Diffuse = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			md.Opacity = float32(cf[3])
			if pbr.BaseColorTexture != nil {
				addTex(&md, TextureDiffuse, texPath(pbr.BaseColorTexture.Index))
			}
			if pbr.MetallicRoughnessTexture != nil {
				addTex(&md, TextureMetallicRoughness, texPath(pbr.MetallicRoughnessTexture.Index))
			}
			// Metallic-roughness approximated as Blinn-Phong:
			// smooth surfaces get a tight highlight, metals a strong one.
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			md.Shininess = (1-roughness)*(1-roughness)*128 + 1
			spec := 0.04 + metallic*0.66
			md.Specular = core.Color{R: spec, G: spec, B: spec, A: 1}
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			addTex(&md, TextureNormal, texPath(*gm.NormalTexture.Index))
		}
		if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
			addTex(&md, TextureOcclusion, texPath(*gm.OcclusionTexture.Index))
		}
		if gm.EmissiveTexture != nil {
			addTex(&md, TextureEmissive, texPath(gm.EmissiveTexture.Index))
		}
		ef := gm.EmissiveFactor
		md.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
		if gm.AlphaMode == gltf.AlphaOpaque {
			md.Opacity = 1
		}
		s.Materials = append(s.Materials, md)
	}

	// ── 3. Mesh primitives (local space) ─────────────────────────────────────
	prims := make([][]SubMesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			sm, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				logger.Log.Warn("gltf primitive skipped",
					zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			prims[mi] = append(prims[mi], sm)
		}
	}

	// ── 4. Lights declared on the document ───────────────────────────────────
	var docLights lightspunctual.Lights
	switch v := doc.Extensions[lightspunctual.ExtensionName].(type) {
	case lightspunctual.Lights:
		docLights = v
	case *lightspunctual.Lights:
		docLights = *v
	}

	// ── 5. Node hierarchy ────────────────────────────────────────────────────
	if len(doc.Nodes) == 0 {
		for _, ps := range prims {
			s.Meshes = append(s.Meshes, ps...)
		}
		return s, nil
	}

	w := gltfWalker{doc: doc, scene: s, prims: prims, lights: docLights, seen: make([]bool, len(doc.Nodes))}
	for _, root := range gltfRoots(doc) {
		w.visit(root, mgl32.Ident4())
	}
	return s, nil
}

func addTex(md *MaterialData, typ TextureType, path string) {
	if path != "" {
		md.AddTexture(typ, path)
	}
}

// gltfRoots returns the default scene's nodes, or every parentless node
// when the document names no scene.
func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

type gltfWalker struct {
	doc    *gltf.Document
	scene  *Scene
	prims  [][]SubMesh
	lights lightspunctual.Lights
	seen   []bool
}

func (w *gltfWalker) visit(idx int, parent mgl32.Mat4) {
	if idx < 0 || idx >= len(w.doc.Nodes) || w.seen[idx] {
		return
	}
	w.seen[idx] = true
	gn := w.doc.Nodes[idx]
	world := parent.Mul4(gltfLocalMatrix(gn))

	if gn.Mesh != nil && *gn.Mesh < len(w.prims) {
		for _, p := range w.prims[*gn.Mesh] {
			sm := p
			sm.Vertices = append([]core.Vertex(nil), p.Vertices...)
			TransformVertices(sm.Vertices, world)
			if gn.Name != "" {
				sm.Name = gn.Name + "/" + p.Name
			}
			w.scene.Meshes = append(w.scene.Meshes, sm)
		}
	}

	if li, ok := gltfLightIndex(gn); ok && li < len(w.lights) && w.lights[li] != nil {
		w.scene.Lights = append(w.scene.Lights, convertGLTFLight(w.lights[li], world))
	}

	for _, c := range gn.Children {
		w.visit(c, world)
	}
}

func gltfLightIndex(gn *gltf.Node) (int, bool) {
	switch v := gn.Extensions[lightspunctual.ExtensionName].(type) {
	case lightspunctual.LightIndex:
		return int(v), true
	case *lightspunctual.LightIndex:
		return int(*v), true
	}
	return 0, false
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func gltfLocalMatrix(gn *gltf.Node) mgl32.Mat4 {
	if m := gn.MatrixOrDefault(); m != identityMatrix {
		var out mgl32.Mat4
		for i := range out {
			out[i] = float32(m[i])
		}
		return out
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	sc := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(sc[0]), float32(sc[1]), float32(sc[2])))
}

// convertGLTFLight places a punctual light using its node's world matrix.
// glTF lights shine down their local -Z axis.
func convertGLTFLight(l *lightspunctual.Light, world mgl32.Mat4) LightData {
	c := l.ColorOrDefault()
	color := core.Color{R: float32(c[0]), G: float32(c[1]), B: float32(c[2]), A: 1}
	intensity := float32(l.IntensityOrDefault())
	pos := world.Col(3).Vec3()
	dir := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}

	var ld LightData
	switch l.Type {
	case lightspunctual.TypeDirectional:
		ld = NewDirectionalLight(dir, color, intensity)
	case lightspunctual.TypeSpot:
		inner, outer := float32(0), float32(mgl32.DegToRad(45))
		if l.Spot != nil {
			inner = float32(l.Spot.InnerConeAngle)
			outer = float32(l.Spot.OuterConeAngleOrDefault())
		}
		ld = NewSpotLight(pos, dir, color, intensity, inner, outer)
	default:
		ld = NewPointLight(pos, color, intensity)
	}
	ld.Name = l.Name
	return ld
}

// loadGLTFPrimitive converts one triangle primitive into a local-space SubMesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (SubMesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	if prim.Mode != gltf.PrimitiveTriangles {
		return SubMesh{}, fmt.Errorf("primitive mode %v is not a triangle list", prim.Mode)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return SubMesh{}, fmt.Errorf("no POSITION attribute")
	}
	acr, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return SubMesh{}, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return SubMesh{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if acr, err := gltfAccessor(doc, idx); err == nil {
			normals, _ = modeler.ReadNormal(doc, acr, nil)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if acr, err := gltfAccessor(doc, idx); err == nil {
			uvs, _ = modeler.ReadTextureCoord(doc, acr, nil)
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.White,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
		}
		if i < len(uvs) {
			// glTF UVs start at the top-left; textures are uploaded bottom-up.
			v.UV = mgl32.Vec2{uvs[i][0], 1 - uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := gltfAccessor(doc, *prim.Indices)
		if err == nil {
			indices, err = modeler.ReadIndices(doc, acr, nil)
		}
		if err != nil {
			return SubMesh{}, fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(verts) {
				return SubMesh{}, fmt.Errorf("index %d out of range (%d vertices)", i, len(verts))
			}
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(normals) == 0 {
		GenerateNormals(verts, indices)
	}

	matIdx := -1
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		matIdx = *prim.Material
	}
	return SubMesh{Name: name, Vertices: verts, Indices: indices, MaterialIndex: matIdx}, nil
}

// gltfAccessor looks up an accessor and checks that the buffer views and
// buffers it reads from exist, so a malformed document fails the primitive
// instead of panicking inside modeler.
func gltfAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d out of range (%d)", idx, len(doc.Accessors))
	}
	acr := doc.Accessors[idx]
	if acr.Count < 0 {
		return nil, fmt.Errorf("accessor %d: negative count %d", idx, acr.Count)
	}
	if acr.BufferView != nil {
		bv, err := gltfBufferView(doc, *acr.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", idx, err)
		}
		if acr.ByteOffset < 0 || acr.ByteOffset > bv.ByteLength {
			return nil, fmt.Errorf("accessor %d: byte offset %d outside view of %d bytes", idx, acr.ByteOffset, bv.ByteLength)
		}
	}
	if sp := acr.Sparse; sp != nil {
		for _, bv := range [2]int{sp.Indices.BufferView, sp.Values.BufferView} {
			if _, err := gltfBufferView(doc, bv); err != nil {
				return nil, fmt.Errorf("accessor %d sparse: %w", idx, err)
			}
		}
	}
	return acr, nil
}

func gltfBufferView(doc *gltf.Document, idx int) (*gltf.BufferView, error) {
	if idx < 0 || idx >= len(doc.BufferViews) || doc.BufferViews[idx] == nil {
		return nil, fmt.Errorf("buffer view %d out of range (%d)", idx, len(doc.BufferViews))
	}
	bv := doc.BufferViews[idx]
	if bv.ByteOffset < 0 || bv.ByteLength < 0 {
		return nil, fmt.Errorf("buffer view %d: negative range", idx)
	}
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
		return nil, fmt.Errorf("buffer view %d: buffer %d out of range (%d)", idx, bv.Buffer, len(doc.Buffers))
	}
	return bv, nil
}
