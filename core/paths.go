package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolvePath anchors a relative path at the executable's directory rather
// than the working directory. Absolute paths are returned unchanged.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	dir, err := ExecutableDir()
	if err != nil {
		return path
	}
	return filepath.Join(dir, path)
}

// ExecutableFS returns a file system rooted at dir resolved against the
// executable's directory.
func ExecutableFS(dir string) fs.FS {
	return os.DirFS(ResolvePath(dir))
}
