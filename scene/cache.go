package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"deferred-engine/internal/logger"
)

const cacheVersion = 1

// cacheFile is the on-disk form of an imported Scene.
type cacheFile struct {
	Version int
	Source  string
	Scene   *Scene
}

// ErrStaleCache is returned by LoadCache when the file was written by a
// different cache version.
var ErrStaleCache = errors.New("stale scene cache")

// SaveCache writes s to path as lz4-compressed JSON.
func SaveCache(s *Scene, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cache %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close cache %q: %w", path, cerr)
		}
	}()
	return writeCache(f, s)
}

func writeCache(w io.Writer, s *Scene) error {
	zw := lz4.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(cacheFile{Version: cacheVersion, Source: s.Path, Scene: s}); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}

// LoadCache reads a Scene written by SaveCache.
func LoadCache(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", path, err)
	}
	defer f.Close()
	return readCache(f)
}

func readCache(r io.Reader) (*Scene, error) {
	var cf cacheFile
	if err := json.NewDecoder(lz4.NewReader(r)).Decode(&cf); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	if cf.Version != cacheVersion || cf.Scene == nil {
		return nil, fmt.Errorf("%w: version %d", ErrStaleCache, cf.Version)
	}
	return cf.Scene, nil
}

// CachePath is where ImportCached keeps the cache for a model file.
func CachePath(cacheDir, modelPath string) string {
	return filepath.Join(cacheDir, filepath.Base(modelPath)+".lzscene")
}

// ImportCached imports path, reusing a cache in cacheDir while it is newer
// than the model file. An empty cacheDir disables caching. Cache problems
// are logged and fall back to a fresh import.
func ImportCached(path, cacheDir string) (*Scene, error) {
	if cacheDir == "" {
		return Import(path)
	}
	cp := CachePath(cacheDir, path)

	if src, err := os.Stat(path); err == nil {
		if c, err := os.Stat(cp); err == nil && !c.ModTime().Before(src.ModTime()) {
			s, err := LoadCache(cp)
			if err == nil {
				s.Path = path
				return s, nil
			}
			logger.Log.Warn("Scene cache unreadable", zap.String("cache", cp), zap.Error(err))
		}
	}

	s, err := Import(path)
	if err != nil {
		return s, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logger.Log.Warn("Scene cache dir", zap.String("dir", cacheDir), zap.Error(err))
		return s, nil
	}
	if err := SaveCache(s, cp); err != nil {
		logger.Log.Warn("Scene cache write", zap.String("cache", cp), zap.Error(err))
	}
	return s, nil
}
