// Package scan discovers image files and reads their basic metadata.
package scan

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageExts lists the recognized image extensions, matched case-insensitively.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Discover walks root recursively and returns image paths in lexical walk
// order. Symlinks to image files are included; symlinked directories are not
// descended. Subdirectories that cannot be read are skipped with a warning.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !IsImage(path) {
			return nil
		}
		switch {
		case d.Type().IsRegular():
			paths = append(paths, path)
		case d.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				slog.Warn("skipping broken symlink", "path", path, "error", err)
				return nil
			}
			if info.Mode().IsRegular() {
				paths = append(paths, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// Metadata holds the basic facts captured once per image at discovery time.
type Metadata struct {
	Width     int
	Height    int
	SizeBytes int64
}

// Probe decodes only the image header of path. A file that is not a decodable
// image returns an error.
func Probe(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Metadata{}, err
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return Metadata{Width: cfg.Width, Height: cfg.Height, SizeBytes: info.Size()}, nil
}
