package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wot-oss/fwreg/internal/catalog"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/testutils"
	"golang.org/x/exp/rand"
)

func newDoc(t *testing.T, source, id, version, date string) *model.Document {
	d, err := catalog.Parse("/r/"+source, source, testutils.NewManifest(id, version, date).JSON())
	require.NoError(t, err)
	return d
}

func TestSelectLatest(t *testing.T) {
	a1 := newDoc(t, "packages/a-1.0.0.json", "A", "1.0.0", "2023-01-01")
	a2 := newDoc(t, "packages/a-1.1.0.json", "A", "1.1.0", "2023-06-01")
	b := newDoc(t, "packages/b.json", "B", "2.0.0", "2023-03-01")

	sel := SelectLatest([]*model.Document{a1, a2, b})

	assert.Len(t, sel, 2)
	assert.Same(t, a2, sel["A"])
	assert.Same(t, b, sel["B"])
	assert.Equal(t, []*model.Document{a2, b}, sel.Sorted())
}

func TestSelectLatest_DateBeforeVersion(t *testing.T) {
	older := newDoc(t, "packages/a-9.json", "A", "9.0.0", "2022-12-31")
	newer := newDoc(t, "packages/a-1.json", "A", "1.0.0", "2023-01-01")
	sameDay := newDoc(t, "packages/a-1.1.json", "A", "1.1.0", "2023-01-01")

	sel := SelectLatest([]*model.Document{older, newer, sameDay})

	assert.Same(t, sameDay, sel["A"])
}

func TestSelectLatest_VersionsAreStrings(t *testing.T) {
	v9 := newDoc(t, "packages/a-9.json", "A", "1.9.0", "2023-01-01")
	v10 := newDoc(t, "packages/a-10.json", "A", "1.10.0", "2023-01-01")

	sel := SelectLatest([]*model.Document{v10, v9})

	assert.Same(t, v9, sel["A"])
}

func TestSelectLatest_TieIndependentOfOrder(t *testing.T) {
	docs := []*model.Document{
		newDoc(t, "packages/c/a.json", "A", "1.0.0", "2023-01-01"),
		newDoc(t, "packages/a/a.json", "A", "1.0.0", "2023-01-01"),
		newDoc(t, "packages/b/a.json", "A", "1.0.0", "2023-01-01"),
		newDoc(t, "packages/z.json", "Z", "0.1.0", "2020-01-01"),
	}
	for i := 0; i < 20; i++ {
		rand.Shuffle(len(docs), func(i, j int) { docs[i], docs[j] = docs[j], docs[i] })

		sel := SelectLatest(docs)

		assert.Equal(t, "packages/a/a.json", sel["A"].Source)
		assert.Equal(t, "packages/z.json", sel["Z"].Source)
	}
}

func TestSelectLatest_Empty(t *testing.T) {
	sel := SelectLatest(nil)
	assert.Empty(t, sel)
	assert.Empty(t, sel.Sorted())
}
