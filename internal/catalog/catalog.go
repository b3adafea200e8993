package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

const DefaultPattern = "**/*.json"

// Catalog finds and loads the manifest files of a registry
type Catalog struct {
	root        string
	packagesDir string
	pattern     string
	ignoreFile  string
}

// New creates a Catalog for the manifests in packagesDir. Document sources are computed relative to root.
// An empty pattern defaults to DefaultPattern. ignoreFile may be empty or point to a non-existing file.
func New(root, packagesDir, pattern, ignoreFile string) *Catalog {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Catalog{
		root:        root,
		packagesDir: packagesDir,
		pattern:     pattern,
		ignoreFile:  ignoreFile,
	}
}

// Discover returns the absolute paths of all manifest files in lexicographic order of their slash-separated
// paths relative to the packages directory.
// File names starting with '_' and files matched by the ignore file are skipped.
// A missing packages directory yields an empty result.
func (c *Catalog) Discover(ctx context.Context) ([]string, error) {
	log := utils.GetLogger(ctx, "catalog")
	stat, err := os.Stat(c.packagesDir)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("packages directory does not exist", "dir", c.packagesDir)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", c.packagesDir)
	}

	ign, err := c.readIgnoreFile()
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(c.packagesDir), c.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid manifest pattern %q: %w", c.pattern, err)
	}
	slices.Sort(matches)

	var res []string
	for _, m := range matches {
		if strings.HasPrefix(path.Base(m), "_") {
			log.Debug("skipping underscore file", "path", m)
			continue
		}
		if ign != nil && ign.MatchesPath(m) {
			log.Debug("skipping ignored file", "path", m)
			continue
		}
		res = append(res, filepath.Join(c.packagesDir, filepath.FromSlash(m)))
	}
	log.Debug(fmt.Sprintf("discovered %d manifests", len(res)), "dir", c.packagesDir)
	return res, nil
}

func (c *Catalog) readIgnoreFile() (*ignore.GitIgnore, error) {
	if c.ignoreFile == "" {
		return nil, nil
	}
	_, err := os.Stat(c.ignoreFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	ign, err := ignore.CompileIgnoreFile(c.ignoreFile)
	if err != nil {
		return nil, fmt.Errorf("could not read ignore file %s: %w", c.ignoreFile, err)
	}
	return ign, nil
}

// Load reads the manifest file at path
func (c *Catalog) Load(path string) (*model.Document, error) {
	return Load(c.root, path)
}

// LoadAll discovers and loads all manifests. Fails on the first file which cannot be loaded
func (c *Catalog) LoadAll(ctx context.Context) ([]*model.Document, error) {
	paths, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*model.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := c.Load(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// PackagesDir returns the directory containing the manifests
func (c *Catalog) PackagesDir() string {
	return c.packagesDir
}

// Load reads and parses the manifest file at path. The document's source is the path relative to root
func Load(root, path string) (*model.Document, error) {
	abs, raw, err := utils.ReadRequiredFile(path)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	source, err := utils.RelSlash(absRoot, abs)
	if err != nil {
		return nil, err
	}
	return Parse(abs, source, raw)
}

// Parse creates a Document from raw manifest content
func Parse(path, source string, raw []byte) (*model.Document, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}
	doc := &model.Document{
		Path:   path,
		Source: source,
		Raw:    raw,
		Parsed: parsed,
	}
	if _, ok := parsed.(map[string]any); !ok {
		// leave the typed manifest empty and let schema validation report the problem
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc.Manifest); err != nil {
		// type mismatches are reported by schema validation
		doc.Manifest = lenientManifest(parsed.(map[string]any))
	}
	return doc, nil
}

// lenientManifest extracts the fields which have the expected types
func lenientManifest(m map[string]any) model.Manifest {
	var res model.Manifest
	res.ID, _ = m["id"].(string)
	res.Version, _ = m["version"].(string)
	if rel, ok := m["release"].(map[string]any); ok {
		res.Release.Date, _ = rel["date"].(string)
	}
	if boards, ok := m["boards"].([]any); ok {
		for _, b := range boards {
			bm, ok := b.(map[string]any)
			if !ok {
				continue
			}
			var board model.Board
			board.Brand, _ = bm["brand"].(string)
			board.Model, _ = bm["model"].(string)
			res.Boards = append(res.Boards, board)
		}
	}
	res.MCU = stringList(m["mcu"])
	res.Regions = stringList(m["regions"])
	res.Features = stringList(m["features"])
	res.Scenes = stringList(m["scenes"])
	if arts, ok := m["artifacts"].([]any); ok {
		for _, a := range arts {
			am, ok := a.(map[string]any)
			if !ok {
				continue
			}
			var art model.Artifact
			art.URL, _ = am["url"].(string)
			art.SHA256, _ = am["sha256"].(string)
			art.FlashURL, _ = am["flash_url"].(string)
			res.Artifacts = append(res.Artifacts, art)
		}
	}
	return res
}

func stringList(v any) []string {
	l, ok := v.([]any)
	if !ok {
		return nil
	}
	var res []string
	for _, e := range l {
		if s, ok := e.(string); ok {
			res = append(res, s)
		}
	}
	return res
}
