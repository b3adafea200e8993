package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/testutils"
)

func docWithFlashURLs(t *testing.T, id string, flashURLs ...string) *model.Document {
	b := testutils.NewManifest(id, "1.0.0", "2023-01-01")
	for _, u := range flashURLs {
		b.WithArtifact("", "", u)
	}
	d, err := catalog.Parse("/r/packages/"+id+".json", "packages/"+id+".json", b.JSON())
	require.NoError(t, err)
	return d
}

func TestRetainedAssets(t *testing.T) {
	dist := filepath.Join(string(filepath.Separator), "srv", "dist")
	docs := []*model.Document{
		docWithFlashURLs(t, "a", "assets/firmware/a.bin", "https://example.com/d.bin", ""),
		docWithFlashURLs(t, "b", "/assets/firmware/sub/../b.bin", "http://example.com/e.bin"),
	}

	retain := RetainedAssets(dist, docs)

	assert.Equal(t, RetainSet{
		filepath.Join(dist, "assets", "firmware", "a.bin"): {},
		filepath.Join(dist, "assets", "firmware", "b.bin"): {},
	}, retain)
	assert.True(t, retain.Contains(filepath.Join(dist, "assets", "firmware", ".", "a.bin")))
	assert.False(t, retain.Contains(filepath.Join(dist, "assets", "firmware", "d.bin")))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.bin"))
	assert.True(t, IsRemote("http://example.com/a.bin"))
	assert.False(t, IsRemote("assets/firmware/a.bin"))
	assert.False(t, IsRemote("/assets/firmware/a.bin"))
	assert.False(t, IsRemote("ftp://example.com/a.bin"))
}

func setupFirmware(t *testing.T, files ...string) (string, string) {
	dist := t.TempDir()
	for _, f := range files {
		testutils.WriteFile(t, dist, "assets/firmware/"+f, []byte(f))
	}
	return dist, filepath.Join(dist, "assets", "firmware")
}

func TestPrune(t *testing.T) {
	dist, fwDir := setupFirmware(t, "a.bin", "b.bin", "c.bin")
	docs := []*model.Document{docWithFlashURLs(t, "a", "assets/firmware/a.bin", "https://example.com/d.bin")}

	res, err := (&Pruner{}).Prune(context.Background(), fwDir, RetainedAssets(dist, docs))

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(fwDir, "a.bin")}, res.Kept)
	assert.Equal(t, []string{filepath.Join(fwDir, "b.bin"), filepath.Join(fwDir, "c.bin")}, res.Removed)
	assert.FileExists(t, filepath.Join(fwDir, "a.bin"))
	assert.NoFileExists(t, filepath.Join(fwDir, "b.bin"))
	assert.NoFileExists(t, filepath.Join(fwDir, "c.bin"))
	assert.NoFileExists(t, filepath.Join(fwDir, "d.bin"))
	entries, err := os.ReadDir(fwDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPrune_Nested(t *testing.T) {
	dist, fwDir := setupFirmware(t, "esp32/a.bin", "esp32/old/a.bin", "rp2040/b.uf2")
	docs := []*model.Document{docWithFlashURLs(t, "a", "assets/firmware/esp32/a.bin", "/assets/firmware/rp2040/b.uf2")}

	res, err := (&Pruner{}).Prune(context.Background(), fwDir, RetainedAssets(dist, docs))

	require.NoError(t, err)
	assert.Len(t, res.Kept, 2)
	assert.Equal(t, []string{filepath.Join(fwDir, "esp32", "old", "a.bin")}, res.Removed)
}

func TestPrune_DryRun(t *testing.T) {
	dist, fwDir := setupFirmware(t, "a.bin", "b.bin")

	res, err := (&Pruner{DryRun: true}).Prune(context.Background(), fwDir, RetainedAssets(dist, nil))

	require.NoError(t, err)
	assert.Len(t, res.Removed, 2)
	assert.FileExists(t, filepath.Join(fwDir, "a.bin"))
	assert.FileExists(t, filepath.Join(fwDir, "b.bin"))
}

func TestPrune_Idempotent(t *testing.T) {
	dist, fwDir := setupFirmware(t, "a.bin", "b.bin")
	retain := RetainedAssets(dist, []*model.Document{docWithFlashURLs(t, "a", "assets/firmware/a.bin")})
	p := &Pruner{}

	_, err := p.Prune(context.Background(), fwDir, retain)
	require.NoError(t, err)
	res, err := p.Prune(context.Background(), fwDir, retain)

	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.Equal(t, []string{filepath.Join(fwDir, "a.bin")}, res.Kept)
}

func TestPrune_MissingDir(t *testing.T) {
	res, err := (&Pruner{}).Prune(context.Background(), filepath.Join(t.TempDir(), "nope"), RetainSet{})
	assert.NoError(t, err)
	assert.Empty(t, res.Kept)
	assert.Empty(t, res.Removed)
}
