package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings read from the environment and .env files.
type Config struct {
	Window      WindowConfig
	AssetDir    string // empty: use the embedded assets
	ModelPath   string // empty: build the demo scene from primitives
	CacheDir    string // empty: import models without caching
	LogLevel    string
	Development bool
}

// LoadConfig loads the given .env files (missing files are ignored) and
// reads ENGINE_* variables, falling back to defaults for unset keys.
func LoadConfig(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	envy.Reload()

	def := DefaultWindowConfig()
	cfg := Config{
		Window: WindowConfig{
			Title:     envy.Get("ENGINE_TITLE", def.Title),
			Resizable: def.Resizable,
		},
		AssetDir:  envy.Get("ENGINE_ASSET_DIR", ""),
		ModelPath: envy.Get("ENGINE_MODEL", ""),
		CacheDir:  envy.Get("ENGINE_CACHE_DIR", ""),
		LogLevel:  envy.Get("ENGINE_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Window.Width, err = envInt("ENGINE_WIDTH", def.Width); err != nil {
		return Config{}, err
	}
	if cfg.Window.Height, err = envInt("ENGINE_HEIGHT", def.Height); err != nil {
		return Config{}, err
	}
	if cfg.Window.VSync, err = envBool("ENGINE_VSYNC", def.VSync); err != nil {
		return Config{}, err
	}
	if cfg.Window.Letterbox, err = envBool("ENGINE_LETTERBOX", def.Letterbox); err != nil {
		return Config{}, err
	}
	if cfg.Development, err = envBool("ENGINE_DEV", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, v)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
