// Package organizer materializes named image groups as folders on disk.
package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Cavedragon13/ai-image-organizer/internal/naming"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// PlacementFunc is called after each file is written into the output tree.
type PlacementFunc func(ctx context.Context, group string, rec models.ImageRecord, dest string, copied bool)

// Organizer copies or moves grouped images into outputFolder/<group>/<name>.
type Organizer struct {
	onPlace PlacementFunc
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithPlacementFunc registers a callback invoked for every placed file.
func WithPlacementFunc(fn PlacementFunc) Option {
	return func(o *Organizer) {
		o.onPlace = fn
	}
}

// New creates an Organizer.
func New(opts ...Option) *Organizer {
	o := &Organizer{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Organize creates outputFolder and one subfolder per group, reusing existing
// directories, and places every member. There is no rollback: on error, files
// already placed stay where they are.
func (o *Organizer) Organize(ctx context.Context, groups []models.Group, outputFolder string, copyFiles bool) error {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	for _, g := range groups {
		dir := filepath.Join(outputFolder, g.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating group folder %s: %w", g.Name, err)
		}

		for _, t := range planGroup(g) {
			dest, err := availablePath(filepath.Join(dir, t.name))
			if err != nil {
				return fmt.Errorf("group %s: %w", g.Name, err)
			}
			if copyFiles {
				err = copyWithTimes(t.rec.SourcePath, dest)
			} else {
				err = moveFile(t.rec.SourcePath, dest)
			}
			if err != nil {
				return fmt.Errorf("placing %s into %s: %w", t.rec.OriginalName, g.Name, err)
			}

			slog.Debug("image placed", "group", g.Name, "source", t.rec.SourcePath, "dest", dest, "copied", copyFiles)
			if o.onPlace != nil {
				o.onPlace(ctx, g.Name, t.rec, dest, copyFiles)
			}
		}
	}
	return nil
}

type target struct {
	rec  models.ImageRecord
	name string
}

// planGroup decides final file names. A lone member keeps its candidate name;
// members of larger groups are sorted by original name and share a base
// derived from the first member's description: <base>_<NN><ext>.
func planGroup(g models.Group) []target {
	if len(g.Members) == 1 {
		m := g.Members[0]
		return []target{{rec: m, name: m.CandidateFilename}}
	}

	members := append([]models.ImageRecord(nil), g.Members...)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].OriginalName < members[j].OriginalName
	})

	base := naming.BaseName(members[0].Description)
	out := make([]target, 0, len(members))
	for i, m := range members {
		out = append(out, target{
			rec:  m,
			name: fmt.Sprintf("%s_%02d%s", base, i+1, filepath.Ext(m.SourcePath)),
		})
	}
	return out
}

// availablePath returns path unchanged if nothing exists there, otherwise the
// first free <stem>_<n><ext>.
func availablePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	candidate := path
	for n := 1; ; n++ {
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
}
