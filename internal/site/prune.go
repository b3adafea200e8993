package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

// RetainSet is a set of cleaned absolute file names which must survive pruning
type RetainSet map[string]struct{}

func (r RetainSet) Contains(name string) bool {
	_, ok := r[filepath.Clean(name)]
	return ok
}

// IsRemote reports whether a flash_url points to another host rather than into the site
func IsRemote(flashURL string) bool {
	return strings.HasPrefix(flashURL, "http://") || strings.HasPrefix(flashURL, "https://")
}

// RetainedAssets computes the local asset files referenced by the flash_url of any artifact in docs.
// Relative flash URLs are resolved against distRoot; a leading '/' also denotes distRoot.
// Remote and empty flash URLs reference nothing local
func RetainedAssets(distRoot string, docs []*model.Document) RetainSet {
	res := make(RetainSet)
	for _, d := range docs {
		for _, a := range d.Artifacts {
			if a.FlashURL == "" || IsRemote(a.FlashURL) {
				continue
			}
			rel := strings.TrimLeft(a.FlashURL, "/")
			res[filepath.Clean(filepath.Join(distRoot, filepath.FromSlash(rel)))] = struct{}{}
		}
	}
	return res
}

// PruneResult lists the files kept and removed by a prune, in walk order
type PruneResult struct {
	Kept    []string
	Removed []string
}

// Pruner removes firmware assets which are not referenced by any selected manifest
type Pruner struct {
	// DryRun reports what would be removed without removing anything
	DryRun bool
}

// Plan walks firmwareDir and partitions its files into those to keep and those to remove.
// Nothing is modified. A missing firmwareDir yields an empty result
func (p *Pruner) Plan(firmwareDir string, retain RetainSet) (*PruneResult, error) {
	res := &PruneResult{}
	_, err := os.Stat(firmwareDir)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	err = filepath.WalkDir(firmwareDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if retain.Contains(path) {
			res.Kept = append(res.Kept, path)
		} else {
			res.Removed = append(res.Removed, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan firmware assets in %s: %w", firmwareDir, err)
	}
	return res, nil
}

// Prune removes every file below firmwareDir which is not in retain. The deletions happen only after
// the whole tree has been scanned. Deletion is not transactional: on error, some files may already be gone
func (p *Pruner) Prune(ctx context.Context, firmwareDir string, retain RetainSet) (*PruneResult, error) {
	log := utils.GetLogger(ctx, "prune")
	res, err := p.Plan(firmwareDir, retain)
	if err != nil {
		return nil, err
	}
	if p.DryRun {
		for _, f := range res.Removed {
			log.Info("would remove unreferenced asset", "file", f)
		}
		return res, nil
	}

	// deletion pass
	for i, f := range res.Removed {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &PruneResult{Kept: res.Kept, Removed: slices.Clip(res.Removed[:i])}, fmt.Errorf("could not remove %s: %w", f, err)
		}
		log.Debug("removed unreferenced asset", "file", f)
	}
	log.Info(fmt.Sprintf("pruned %d firmware assets, kept %d", len(res.Removed), len(res.Kept)))
	return res, nil
}
