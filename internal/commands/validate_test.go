package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/testutils"
)

func TestValidateFiles(t *testing.T) {
	root := testutils.NewRegistry(t, map[string][]byte{
		"ok.json":     testutils.NewManifest("a", "1.0.0", "2023-01-01").JSON(),
		"schema.json": []byte(`{"id": "b"}`),
		"policy.json": testutils.NewManifest("c", "1.0.0", "2023-01-01").With("regions", []string{"mars"}).JSON(),
	})
	testutils.WriteFile(t, root, "schemas/allowed.yaml", []byte("regions: [eu]\n"))
	pkgs := filepath.Join(root, "packages")
	files := []string{
		filepath.Join(pkgs, "ok.json"),
		filepath.Join(pkgs, "schema.json"),
		filepath.Join(pkgs, "policy.json"),
		filepath.Join(pkgs, "missing.json"),
	}

	res, err := ValidateFiles(context.Background(), config.DefaultLayout(root), files)

	require.NoError(t, err)
	require.Len(t, res, 4)
	assert.True(t, res[0].Ok())
	assert.Equal(t, "packages/ok.json", res[0].Source)
	assert.ErrorIs(t, res[1].Err, model.ErrSchemaViolation)
	assert.ErrorIs(t, res[2].Err, model.ErrPolicyViolation)
	assert.False(t, res[3].Ok())
	assert.Equal(t, "", res[3].Source)
}

func TestValidateFiles_MissingSchema(t *testing.T) {
	_, err := ValidateFiles(context.Background(), config.DefaultLayout(t.TempDir()), []string{"a.json"})
	assert.ErrorIs(t, err, model.ErrMissingInput)
}
