// Package scene holds the camera and the import-time description of models:
// geometry, material descriptions and lights, produced by the glTF and OBJ
// importers before anything touches the GPU.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"deferred-engine/internal/logger"
)

var (
	// ErrIncompleteScene is returned when an import yields no usable geometry.
	ErrIncompleteScene = errors.New("incomplete scene")
	// ErrUnsupportedFormat is returned for file extensions with no importer.
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Scene is everything an importer extracted from one model file.
type Scene struct {
	Path      string
	Meshes    []SubMesh
	Materials []MaterialData
	Lights    []LightData

	// Embedded holds encoded images stored inside the model file.
	Embedded [][]byte
}

// Empty reports whether the scene has no geometry.
func (s *Scene) Empty() bool {
	return s == nil || len(s.Meshes) == 0
}

// Import picks an importer from the file extension. Failures are logged and
// returned with an empty, non-nil Scene so callers can keep going.
func Import(path string) (*Scene, error) {
	var (
		s   *Scene
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		s, err = LoadGLTF(path)
	case ".obj":
		s, err = LoadOBJ(path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	if err == nil && s.Empty() {
		err = fmt.Errorf("%w: %q has no meshes", ErrIncompleteScene, path)
	}
	if err != nil {
		logger.Log.Error("Model import failed", zap.String("path", path), zap.Error(err))
		return &Scene{Path: path}, err
	}
	return s, nil
}

// Embed stores encoded image bytes that came from inside the model file and
// returns the "*N" path that refers to them in MaterialData.
func (s *Scene) Embed(data []byte) string {
	s.Embedded = append(s.Embedded, data)
	return fmt.Sprintf("*%d", len(s.Embedded)-1)
}

// EmbeddedTexture resolves a "*N" path produced by Embed.
func (s *Scene) EmbeddedTexture(path string) ([]byte, bool) {
	if !strings.HasPrefix(path, "*") {
		return nil, false
	}
	var i int
	if _, err := fmt.Sscanf(path, "*%d", &i); err != nil || i < 0 || i >= len(s.Embedded) {
		return nil, false
	}
	return s.Embedded[i], true
}
