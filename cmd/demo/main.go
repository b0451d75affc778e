package main

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"deferred-engine/assets"
	"deferred-engine/core"
	"deferred-engine/gpu"
	"deferred-engine/internal/logger"
	"deferred-engine/internal/opengl"
	"deferred-engine/materials"
	"deferred-engine/renderer"
	"deferred-engine/scene"
	"deferred-engine/sprites"
)

// CameraController turns arrow keys and W/S into orbit and zoom.
type CameraController struct {
	orbitSpeed float32 // radians per second
	zoomSpeed  float32 // units per second
}

func NewCameraController() *CameraController {
	return &CameraController{orbitSpeed: 1.5, zoomSpeed: 6}
}

func (cc *CameraController) Update(window *core.Window, camera *scene.OrbitCamera, dt float32) {
	// Cap dt so a hitch does not spin the camera.
	if dt > 0.05 {
		dt = 0.05
	}
	var yaw, pitch, zoom float32
	if window.IsKeyPressed(core.KeyLeft) {
		yaw -= cc.orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyRight) {
		yaw += cc.orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyUp) {
		pitch += cc.orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyDown) {
		pitch -= cc.orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyW) {
		zoom -= cc.zoomSpeed * dt
	}
	if window.IsKeyPressed(core.KeyS) {
		zoom += cc.zoomSpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		camera.Orbit(yaw, pitch)
	}
	if zoom != 0 {
		camera.Zoom(zoom)
	}
}

// toggle reports a key press once per press.
type toggle struct{ down bool }

func (t *toggle) pressed(window *core.Window, key int) bool {
	down := window.IsKeyPressed(key)
	fired := down && !t.down
	t.down = down
	return fired
}

// prop is one primitive of the built-in scene.
type prop struct {
	mesh     scene.SubMesh
	color    core.Color
	opacity  float32
	emissive core.Color
	at       mgl32.Vec3
	spin     float32 // radians per second about +Y
}

var props = []prop{
	{mesh: scene.CreatePlane(12, 12, 4), color: core.Color{R: 0.55, G: 0.55, B: 0.5, A: 1}, opacity: 1},
	{mesh: scene.CreateCube(1), color: core.Color{R: 0.8, G: 0.2, B: 0.15, A: 1}, opacity: 1, at: mgl32.Vec3{-1.5, 0.5, 0}, spin: 0.6},
	{mesh: scene.CreateSphere(0.6, 32, 16), color: core.Color{R: 0.2, G: 0.45, B: 0.85, A: 1}, opacity: 1, at: mgl32.Vec3{1.5, 0.6, 0}},
	{mesh: scene.CreateSphere(0.5, 32, 16), color: core.Color{R: 0.9, G: 0.9, B: 1, A: 1}, opacity: 0.35, at: mgl32.Vec3{0, 0.5, 1.5}},
	{mesh: scene.CreateCube(0.4), color: core.ColorWhite, opacity: 1, emissive: core.Color{R: 1, G: 0.8, B: 0.3, A: 1}, at: mgl32.Vec3{0, 0.2, -1.5}, spin: -1.2},
}

// spinner turns one instance about its origin.
type spinner struct {
	inst      *renderer.ModelInstance
	transform core.Transform
	rate      float32
}

// world is everything the geometry pass draws plus the lights it imported.
type world struct {
	instances []*renderer.ModelInstance
	materials []*materials.Material
	lights    []scene.LightData
	spinners  []spinner
}

func (w *world) add(g gpu.GL, shaderFS, textureFS fs.FS, mesh *renderer.Mesh, tr core.Transform) *renderer.ModelInstance {
	mats, err := renderer.NewMaterials(g, shaderFS, assets.GeometryVert, assets.GeometryFrag, textureFS, mesh)
	if err != nil {
		logger.Log.Warn("Materials incomplete", zap.String("mesh", mesh.Path), zap.Error(err))
	}
	inst := renderer.NewModelInstance(mesh, renderer.OrderByMesh(mesh, mats, mats[0])...)
	inst.Transform = tr.Matrix()
	w.instances = append(w.instances, inst)
	w.materials = append(w.materials, mats...)
	w.lights = append(w.lights, mesh.Lights...)
	return inst
}

func (w *world) update(t float64) {
	for _, s := range w.spinners {
		s.transform.Rotation = mgl32.QuatRotate(s.rate*float32(t), mgl32.Vec3{0, 1, 0})
		s.inst.Transform = s.transform.Matrix()
	}
}

// loadWorld imports cfg.ModelPath, or builds the primitive scene when no
// model is configured or the import fails.
func loadWorld(g gpu.GL, cfg core.Config, shaderFS fs.FS) *world {
	w := &world{}
	if cfg.ModelPath != "" {
		path := core.ResolvePath(cfg.ModelPath)
		var (
			mesh *renderer.Mesh
			err  error
		)
		if cfg.CacheDir != "" {
			mesh, err = renderer.LoadMeshCached(g, path, core.ResolvePath(cfg.CacheDir))
		} else {
			mesh, err = renderer.LoadMesh(g, path)
		}
		if err == nil {
			w.add(g, shaderFS, os.DirFS(filepath.Dir(path)), mesh, core.NewTransform())
			return w
		}
		logger.Log.Warn("Falling back to primitive scene", zap.String("model", path), zap.Error(err))
	}

	for _, p := range props {
		s := scene.PrimitiveScene(p.mesh.Name, p.mesh)
		md := &s.Materials[0]
		md.Diffuse = p.color
		md.Opacity = p.opacity
		md.Emissive = p.emissive
		md.Shininess = 48
		tr := core.NewTransform()
		tr.Position = p.at
		inst := w.add(g, shaderFS, nil, renderer.NewMesh(g, s), tr)
		if p.spin != 0 {
			w.spinners = append(w.spinners, spinner{inst: inst, transform: tr, rate: p.spin})
		}
	}
	return w
}

func (w *world) destroy() {
	for _, inst := range w.instances {
		inst.Unload()
	}
	for _, m := range w.materials {
		m.Destroy()
	}
}

// orbitingLights returns two coloured point lights circling the origin.
func orbitingLights(t float64) []scene.LightData {
	out := make([]scene.LightData, 0, 2)
	for i, c := range []core.Color{{R: 1, G: 0.3, B: 0.2, A: 1}, {R: 0.2, G: 0.5, B: 1, A: 1}} {
		a := t*0.7 + float64(i)*math.Pi
		pos := mgl32.Vec3{float32(math.Cos(a)) * 3, 1.2, float32(math.Sin(a)) * 3}
		out = append(out, scene.NewPointLight(pos, c, 2))
	}
	return out
}

func main() {
	cfg, err := core.LoadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Development); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("Demo failed", zap.Error(err))
	}
}

func run(cfg core.Config) error {
	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	g, err := opengl.New()
	if err != nil {
		return err
	}

	var shaderFS fs.FS = assets.Shaders
	if cfg.AssetDir != "" {
		shaderFS = core.ExecutableFS(cfg.AssetDir)
	}

	deferred, err := renderer.NewDeferred(g, window.Viewport, shaderFS)
	if err != nil {
		return fmt.Errorf("deferred pipeline: %w", err)
	}
	defer deferred.Destroy()
	window.OnResize(func(vp *core.Viewport) {
		deferred.Resize(vp.Width, vp.Height)
	})

	w := loadWorld(g, cfg, shaderFS)
	defer w.destroy()

	textMat, err := sprites.NewMaterial(g, shaderFS, assets.SpriteVert, assets.SpriteFrag)
	if err != nil {
		return fmt.Errorf("text material: %w", err)
	}
	defer textMat.Destroy()
	atlas, err := sprites.LoadAtlas(g, sprites.DefaultAtlasCell)
	if err != nil {
		return fmt.Errorf("glyph atlas: %w", err)
	}
	defer g.DeleteTexture(atlas)
	textMat.SetTexture(0, atlas)
	textMat.Shader().SetInt("Texture", 0)
	text := sprites.NewText(g, textMat, window.Viewport, mgl32.Vec2{12, 12}, 14)
	defer text.Destroy()

	r := renderer.New(g)
	camera := scene.NewOrbitCamera(window.Viewport, mgl32.Vec3{0, 0.5, 0}, 7)
	controller := NewCameraController()
	dayNight := NewDayNight()
	overlay := &DebugOverlay{Visible: true}
	var hudKey, pauseKey toggle

	logger.Log.Info("Demo started",
		zap.Int("instances", len(w.instances)),
		zap.Int("materials", len(w.materials)),
		zap.Int("importedLights", len(w.lights)))

	last := window.Time()
	frames, fpsTimer, fps := 0, 0.0, 0
	for !window.ShouldClose() {
		window.PollEvents()
		now := window.Time()
		dt := float32(now - last)
		last = now

		frames++
		fpsTimer += float64(dt)
		if fpsTimer >= 1 {
			fps, frames, fpsTimer = frames, 0, 0
		}

		if window.IsKeyPressed(core.KeyEscape) {
			window.SetShouldClose(true)
		}
		if hudKey.pressed(window, core.KeyF1) {
			overlay.Visible = !overlay.Visible
		}
		if pauseKey.pressed(window, core.KeyP) {
			dayNight.Active = !dayNight.Active
		}
		controller.Update(window, camera, dt)
		dayNight.Update(dt)
		w.update(now)

		lights, sky := dayNight.Lights()
		lights = append(lights, orbitingLights(now)...)
		lights = append(lights, w.lights...)

		r.ResetStats()
		deferred.Geometry(func() {
			r.DrawModelInstances(w.instances, &camera.Camera)
		})

		g.DepthMask(true)
		g.ClearColor(sky.R, sky.G, sky.B, 1)
		g.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
		counts := deferred.Compose(&camera.Camera, lights)

		stats := r.Stats()
		overlay.AddLine("%d fps  %s", fps, dayNight.TimeOfDayStr())
		overlay.AddLine("draws %d  tris %d  culled %d", stats.DrawCalls, stats.Triangles, stats.Culled)
		overlay.AddLine("lights %d/%d/%d", counts.Directional, counts.Point, counts.Spot)
		overlay.Draw(text)

		window.SwapBuffers()
	}
	return nil
}
