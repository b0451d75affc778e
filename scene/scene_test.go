package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"

	"deferred-engine/core"
)

const quadOBJ = `# two materials, one quad each
mtllib quad.mtl
o Front
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl red
f 1/1 2/2 3/3 4/4
o Back
usemtl glass
f -1/4 -2/3 -3/2
`

const quadMTL = `newmtl red
Kd 1 0 0
Ns 32
map_Kd -bm 1 red.png
newmtl glass
Kd 0.5 0.5 1
d 0.25
norm glass_n.png
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadOBJ(t *testing.T) {
	dir := writeFiles(t, map[string]string{"quad.obj": quadOBJ, "quad.mtl": quadMTL})
	s, err := Import(filepath.Join(dir, "quad.obj"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(s.Meshes) != 2 || len(s.Materials) != 2 {
		t.Fatalf("LoadOBJ: expected 2 meshes and 2 materials, got %d / %d", len(s.Meshes), len(s.Materials))
	}

	front := s.Meshes[0]
	if len(front.Indices) != 6 || len(front.Vertices) != 4 {
		t.Errorf("Front: expected fan of 6 indices over 4 vertices, got %d / %d", len(front.Indices), len(front.Vertices))
	}
	for _, v := range front.Vertices {
		if !v.Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
			t.Errorf("Front: generated normal expected +Z, got %v", v.Normal)
		}
		if v.Color != core.White {
			t.Errorf("Front: expected white vertex color, got %v", v.Color)
		}
	}

	red := s.Materials[front.MaterialIndex]
	if red.Name != "red" || red.Diffuse.R != 1 || red.Shininess != 32 {
		t.Errorf("red: unexpected material %+v", red)
	}
	if red.Texture(TextureDiffuse) != "red.png" {
		t.Errorf("red: expected map_Kd red.png, got %q", red.Texture(TextureDiffuse))
	}

	glass := s.Materials[s.Meshes[1].MaterialIndex]
	if !glass.Transparent() || glass.Texture(TextureNormal) != "glass_n.png" {
		t.Errorf("glass: unexpected material %+v", glass)
	}
	if len(s.Meshes[1].Indices) != 3 {
		t.Errorf("Back: negative indices should give one triangle, got %d indices", len(s.Meshes[1].Indices))
	}
}

func TestImportFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{"empty.obj": "# nothing\n", "model.fbx": ""})

	s, err := Import(filepath.Join(dir, "empty.obj"))
	if !errors.Is(err, ErrIncompleteScene) || s == nil || !s.Empty() {
		t.Errorf("empty obj: expected ErrIncompleteScene with empty scene, got %v", err)
	}
	s, err = Import(filepath.Join(dir, "model.fbx"))
	if !errors.Is(err, ErrUnsupportedFormat) || s == nil {
		t.Errorf("fbx: expected ErrUnsupportedFormat, got %v", err)
	}
	s, err = Import(filepath.Join(dir, "missing.obj"))
	if err == nil || s == nil || !s.Empty() {
		t.Errorf("missing: expected error and empty scene")
	}
}

func TestImportMalformedGLTF(t *testing.T) {
	const head = `{"asset":{"version":"2.0"},"nodes":[{"mesh":0}],"scenes":[{"nodes":[0]}],"scene":0,`
	files := map[string]string{}
	// POSITION names an accessor the document does not have.
	files["accessor.gltf"] = head + `"meshes":[{"primitives":[{"attributes":{"POSITION":7}}]}]}`
	// The accessor reads from a missing buffer view.
	files["view.gltf"] = head +
		`"accessors":[{"bufferView":3,"componentType":5126,"count":3,"type":"VEC3"}],` +
		`"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}]}`
	// Valid positions, but the index accessor is missing.
	files["indices.gltf"] = head +
		`"buffers":[{"byteLength":36,"uri":"data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}],` +
		`"bufferViews":[{"buffer":0,"byteLength":36}],` +
		`"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"}],` +
		`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":9}]}]}`
	dir := writeFiles(t, files)

	for _, name := range []string{"accessor.gltf", "view.gltf", "indices.gltf"} {
		s, err := Import(filepath.Join(dir, name))
		if !errors.Is(err, ErrIncompleteScene) {
			t.Errorf("%s: expected ErrIncompleteScene, got %v", name, err)
		}
		if s == nil || !s.Empty() {
			t.Errorf("%s: expected an empty scene", name)
		}
	}
}

func TestLoadGLTFBakesTransformsAndLights(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{"POSITION": pos},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "mesh", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, -2}},
		{Name: "lamp", Translation: [3]float64{1, 2, 3},
			Extensions: gltf.Extensions{lightspunctual.ExtensionName: lightspunctual.LightIndex(0)}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0, 1}}}
	doc.Scene = gltf.Index(0)
	doc.ExtensionsUsed = []string{lightspunctual.ExtensionName}
	doc.Extensions = gltf.Extensions{lightspunctual.ExtensionName: lightspunctual.Lights{
		{Type: lightspunctual.TypePoint, Name: "bulb"},
	}}

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}

	s, err := Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("LoadGLTF: expected 1 mesh, got %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if got := m.Vertices[1].Position; !got.ApproxEqual(mgl32.Vec3{1, 0, -2}) {
		t.Errorf("LoadGLTF: node translation not baked, got %v", got)
	}
	if !m.Vertices[0].Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("LoadGLTF: expected generated +Z normal, got %v", m.Vertices[0].Normal)
	}
	if m.MaterialIndex != -1 {
		t.Errorf("LoadGLTF: expected no material, got %d", m.MaterialIndex)
	}

	if len(s.Lights) != 1 {
		t.Fatalf("LoadGLTF: expected 1 light, got %d", len(s.Lights))
	}
	l := s.Lights[0]
	if l.Type != LightPoint || l.Name != "bulb" || !l.Position.ApproxEqual(mgl32.Vec3{1, 2, 3}) {
		t.Errorf("LoadGLTF: unexpected light %+v", l)
	}
}

func TestGenerateNormalsAreaWeighted(t *testing.T) {
	v := []core.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{5, 5, 5}, Normal: mgl32.Vec3{1, 0, 0}},
	}
	GenerateNormals(v, []uint32{0, 1, 2})
	if !v[0].Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("GenerateNormals: expected +Z, got %v", v[0].Normal)
	}
	if v[3].Normal != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("GenerateNormals: unreferenced vertex changed to %v", v[3].Normal)
	}
}

func TestPrimitives(t *testing.T) {
	q := CreateQuad()
	expected := []uint32{0, 1, 3, 1, 2, 3}
	for i := range expected {
		if q.Indices[i] != expected[i] {
			t.Fatalf("CreateQuad: expected indices %v, got %v", expected, q.Indices)
		}
	}
	c := CreateCube(2)
	if len(c.Vertices) != 24 || len(c.Indices) != 36 {
		t.Errorf("CreateCube: expected 24/36, got %d/%d", len(c.Vertices), len(c.Indices))
	}
	lo, hi := c.Bounds()
	if lo != (mgl32.Vec3{-1, -1, -1}) || hi != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("CreateCube: bounds %v %v", lo, hi)
	}
	s := PrimitiveScene("demo", CreatePlane(10, 10, 2), CreateSphere(1, 8, 4))
	if len(s.Materials) != 2 || s.Meshes[1].MaterialIndex != 1 {
		t.Errorf("PrimitiveScene: expected one material per mesh")
	}
}

func TestEmbeddedTextures(t *testing.T) {
	s := &Scene{}
	p := s.Embed([]byte{1, 2, 3})
	if p != "*0" {
		t.Errorf("Embed: expected *0, got %q", p)
	}
	if data, ok := s.EmbeddedTexture(p); !ok || len(data) != 3 {
		t.Errorf("EmbeddedTexture: lookup failed")
	}
	if _, ok := s.EmbeddedTexture("*7"); ok {
		t.Errorf("EmbeddedTexture: out of range should fail")
	}
	if _, ok := s.EmbeddedTexture("albedo.png"); ok {
		t.Errorf("EmbeddedTexture: file path should not resolve")
	}
}

func TestSceneCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"quad.obj": quadOBJ, "quad.mtl": quadMTL})
	model := filepath.Join(dir, "quad.obj")
	cacheDir := filepath.Join(dir, "cache")

	first, err := ImportCached(model, cacheDir)
	if err != nil {
		t.Fatalf("ImportCached: %v", err)
	}
	cp := CachePath(cacheDir, model)
	if _, err := os.Stat(cp); err != nil {
		t.Fatalf("ImportCached: cache not written: %v", err)
	}

	// Make the source unreadable as OBJ; a fresh cache must still win.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(cp, future, future); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(model, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(model, old, old); err != nil {
		t.Fatal(err)
	}

	cached, err := ImportCached(model, cacheDir)
	if err != nil {
		t.Fatalf("ImportCached: %v", err)
	}
	if len(cached.Meshes) != len(first.Meshes) || len(cached.Materials) != len(first.Materials) {
		t.Fatalf("cache: expected %d meshes, got %d", len(first.Meshes), len(cached.Meshes))
	}
	if cached.Materials[0].Texture(TextureDiffuse) != "red.png" {
		t.Errorf("cache: texture paths lost")
	}
	if cached.Meshes[0].Vertices[2] != first.Meshes[0].Vertices[2] {
		t.Errorf("cache: vertex mismatch")
	}
}
