package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/index"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

type Mode string

const (
	// ModeManifests copies the selected manifests and lists them in manifests.json
	ModeManifests Mode = "manifests"
	// ModeIndex writes the selected manifests into a single index.json
	ModeIndex Mode = "index"

	ManifestsFile    = "manifests.json"
	IndexFile        = "index.json"
	PackagesDir      = "packages"
	DocsDir          = "docs"
	FirmwareAssetDir = "assets/firmware"
)

var ErrUnsafeDist = errors.New("refusing to use distribution directory")

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeManifests:
		return ModeManifests, nil
	case ModeIndex:
		return ModeIndex, nil
	default:
		return "", fmt.Errorf("unknown site mode %q: use %s or %s", s, ModeManifests, ModeIndex)
	}
}

// Assembler builds the distributable site directory of a registry
type Assembler struct {
	Layout  config.Layout
	Catalog *catalog.Catalog
	Mode    Mode
	DryRun  bool
	// Now stamps index.json in ModeIndex. Defaults to time.Now
	Now func() time.Time
}

func NewAssembler(layout config.Layout, mode Mode, dryRun bool) *Assembler {
	return &Assembler{
		Layout:  layout,
		Catalog: catalog.New(layout.Root, layout.PackagesDir, layout.Pattern, layout.IgnoreFile),
		Mode:    mode,
		DryRun:  dryRun,
	}
}

// Report summarizes an assembled site
type Report struct {
	Dist     string
	Selected []*model.Document
	Pruned   *PruneResult
}

// Assemble recreates the distribution directory from scratch: it copies the static site and the docs,
// selects the latest version of every package, publishes the selection according to Mode and finally prunes
// firmware assets not referenced by the selection
func (a *Assembler) Assemble(ctx context.Context) (*Report, error) {
	log := utils.GetLogger(ctx, "site")
	l := a.Layout
	dist := l.DistDir
	if err := a.checkDist(); err != nil {
		return nil, err
	}

	unlock, err := utils.LockOutput(ctx, dist)
	defer unlock()
	if err != nil {
		return nil, err
	}

	if err := cleanDir(dist); err != nil {
		return nil, err
	}
	log.Debug("copying static site", "from", l.SiteDir, "to", dist)
	if err := utils.CopyDir(l.SiteDir, dist); err != nil {
		return nil, fmt.Errorf("could not copy site: %w", err)
	}
	log.Debug("copying docs", "from", l.DocsDir)
	if err := utils.CopyDir(l.DocsDir, filepath.Join(dist, DocsDir)); err != nil {
		return nil, fmt.Errorf("could not copy docs: %w", err)
	}

	docs, err := a.Catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	selected := SelectLatest(docs).Sorted()
	log.Info(fmt.Sprintf("selected %d of %d manifests", len(selected), len(docs)))

	switch a.Mode {
	case ModeIndex:
		err = a.writeIndex(dist, selected)
	default:
		err = a.writeManifests(dist, selected)
	}
	if err != nil {
		return nil, err
	}

	pruner := &Pruner{DryRun: a.DryRun}
	pruned, err := pruner.Prune(ctx, filepath.Join(dist, filepath.FromSlash(FirmwareAssetDir)), RetainedAssets(dist, selected))
	if err != nil {
		return nil, err
	}
	return &Report{Dist: dist, Selected: selected, Pruned: pruned}, nil
}

func (a *Assembler) checkDist() error {
	l := a.Layout
	if l.DistDir == "" {
		return fmt.Errorf("%w: no directory given", ErrUnsafeDist)
	}
	for _, protected := range []string{l.Root, l.PackagesDir, l.SiteDir, l.DocsDir} {
		if protected != "" && utils.IsWithin(l.DistDir, protected) {
			return fmt.Errorf("%w %s: it contains %s", ErrUnsafeDist, l.DistDir, protected)
		}
	}
	for _, source := range []string{l.PackagesDir, l.SiteDir, l.DocsDir} {
		if source != "" && utils.IsWithin(source, l.DistDir) {
			return fmt.Errorf("%w %s: it is inside %s", ErrUnsafeDist, l.DistDir, source)
		}
	}
	return nil
}

func (a *Assembler) writeManifests(dist string, selected []*model.Document) error {
	var paths []string
	for _, d := range selected {
		rel, err := utils.RelSlash(a.Layout.PackagesDir, d.Path)
		if err != nil {
			return err
		}
		target := filepath.Join(dist, PackagesDir, filepath.FromSlash(rel))
		if err := utils.CopyFile(d.Path, target); err != nil {
			return fmt.Errorf("could not copy manifest %s: %w", d.Source, err)
		}
		paths = append(paths, PackagesDir+"/"+rel)
	}
	slices.Sort(paths)
	if paths == nil {
		paths = []string{}
	}
	data, err := utils.EncodeJSONIndent(paths, "  ")
	if err != nil {
		return err
	}
	return utils.AtomicWriteFile(filepath.Join(dist, ManifestsFile), data, utils.DefaultFilePermissions)
}

func (a *Assembler) writeIndex(dist string, selected []*model.Document) error {
	idx, err := index.Build(selected, a.Now)
	if err != nil {
		return err
	}
	data, err := index.Encode(idx)
	if err != nil {
		return err
	}
	return utils.AtomicWriteFile(filepath.Join(dist, IndexFile), data, utils.DefaultFilePermissions)
}

func cleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("could not clean %s: %w", dir, err)
	}
	return os.MkdirAll(dir, utils.DefaultDirPermissions)
}
