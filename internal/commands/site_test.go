package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/config"
	"github.com/wot-oss/fwreg/internal/site"
	"github.com/wot-oss/fwreg/internal/testutils"
	"github.com/wot-oss/fwreg/internal/utils"
)

func TestBuildSite(t *testing.T) {
	root := testutils.NewRegistry(t, map[string][]byte{
		"a-1.json": testutils.NewManifest("a", "1.0.0", "2023-01-01").JSON(),
		"a-2.json": testutils.NewManifest("a", "2.0.0", "2023-02-01").JSON(),
	})

	rep, err := NewSiteCommand(testNow).BuildSite(context.Background(), config.DefaultLayout(root), site.ModeIndex, false)

	require.NoError(t, err)
	assert.Len(t, rep.Selected, 1)
	_, raw, err := utils.ReadRequiredFile(filepath.Join(root, "dist", "index.json"))
	require.NoError(t, err)
	jsonassert.New(t).Assertf(string(raw), `{
		"generated_at": "2024-05-06T07:08:09Z",
		"count": 1,
		"packages": ["<<PRESENCE>>"]
	}`)
}
