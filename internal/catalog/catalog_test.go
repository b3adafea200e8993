package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/testutils"
)

func newCatalog(root string) *Catalog {
	pkgs := filepath.Join(root, "packages")
	return New(root, pkgs, "", filepath.Join(pkgs, ".registryignore"))
}

func TestDiscover(t *testing.T) {
	m := testutils.NewManifest("a", "1", "2023-01-01").JSON()
	root := testutils.NewRegistry(t, map[string][]byte{
		"b.json":              m,
		"a.json":              m,
		"_draft.json":         m,
		"vendor/x/1.0.json":   m,
		"vendor/_tmp/2.json":  m,
		"notes.txt":           []byte("notes"),
		"old/legacy.json":     m,
		"vendor/x/readme.md":  []byte("#"),
		"vendor/x/dir.json/z": []byte("not a manifest"),
	})
	testutils.WriteFile(t, root, "packages/.registryignore", []byte("# retired\nold\n"))

	paths, err := newCatalog(root).Discover(context.Background())

	require.NoError(t, err)
	pkgs := filepath.Join(root, "packages")
	assert.Equal(t, []string{
		filepath.Join(pkgs, "a.json"),
		filepath.Join(pkgs, "b.json"),
		filepath.Join(pkgs, "vendor", "_tmp", "2.json"),
		filepath.Join(pkgs, "vendor", "x", "1.0.json"),
	}, paths)
}

func TestDiscover_Pattern(t *testing.T) {
	m := testutils.NewManifest("a", "1", "2023-01-01").JSON()
	root := testutils.NewRegistry(t, map[string][]byte{
		"a.json":     m,
		"sub/b.json": m,
	})
	pkgs := filepath.Join(root, "packages")

	paths, err := New(root, pkgs, "*.json", "").Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(pkgs, "a.json")}, paths)

	_, err = New(root, pkgs, "[", "").Discover(context.Background())
	assert.Error(t, err)
}

func TestDiscover_MissingPackagesDir(t *testing.T) {
	root := t.TempDir()
	paths, err := newCatalog(root).Discover(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLoad(t *testing.T) {
	raw := testutils.NewManifest("sensor", "1.2.0", "2023-04-01").
		With("mcu", []string{"esp32"}).
		With("homepage", "https://example.com").
		WithArtifact("https://example.com/s.bin", "ABCDEF", "assets/firmware/s.bin").JSON()
	root := testutils.NewRegistry(t, map[string][]byte{"acme/sensor.json": append([]byte{0xef, 0xbb, 0xbf}, raw...)})

	doc, err := Load(root, filepath.Join(root, "packages", "acme", "sensor.json"))

	require.NoError(t, err)
	assert.Equal(t, "packages/acme/sensor.json", doc.Source)
	assert.Equal(t, raw, doc.Raw)
	assert.Equal(t, model.Key{ID: "sensor", Version: "1.2.0"}, doc.Key())
	assert.Equal(t, "2023-04-01", doc.Release.Date)
	assert.Equal(t, []string{"esp32"}, doc.MCU)
	if assert.Len(t, doc.Artifacts, 1) {
		d, ok := doc.Artifacts[0].ExpectedDigest()
		assert.True(t, ok)
		assert.Equal(t, "abcdef", d)
	}
	assert.Equal(t, "https://example.com", doc.Parsed.(map[string]any)["homepage"])
}

func TestLoad_Errors(t *testing.T) {
	root := testutils.NewRegistry(t, map[string][]byte{"broken.json": []byte(`{"id":`)})

	_, err := Load(root, filepath.Join(root, "packages", "broken.json"))
	assert.ErrorContains(t, err, "packages/broken.json")

	_, err = Load(root, filepath.Join(root, "packages", "missing.json"))
	assert.Error(t, err)
}

func TestParse_WrongTypesAreKeptForSchemaValidation(t *testing.T) {
	doc, err := Parse("/r/packages/a.json", "packages/a.json", []byte(`{"id":"a","version":2,"boards":[{"brand":"Acme","model":7}],"mcu":["esp32",1]}`))

	require.NoError(t, err)
	assert.Equal(t, "a", doc.ID)
	assert.Equal(t, "", doc.Version)
	assert.Equal(t, []model.Board{{Brand: "Acme"}}, doc.Boards)
	assert.Equal(t, []string{"esp32"}, doc.MCU)

	doc, err = Parse("/r/packages/a.json", "packages/a.json", []byte(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, model.Manifest{}, doc.Manifest)
}

func TestLoadAll(t *testing.T) {
	root := testutils.NewRegistry(t, map[string][]byte{
		"a.json": testutils.NewManifest("a", "1", "2023-01-01").JSON(),
		"b.json": testutils.NewManifest("b", "1", "2023-01-01").JSON(),
	})

	docs, err := newCatalog(root).LoadAll(context.Background())

	require.NoError(t, err)
	if assert.Len(t, docs, 2) {
		assert.Equal(t, "packages/a.json", docs[0].Source)
		assert.Equal(t, "packages/b.json", docs[1].Source)
	}
}
