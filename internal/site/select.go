package site

import (
	"cmp"
	"slices"

	"github.com/wot-oss/fwreg/internal/model"
)

// SelectedSet maps each package id to the document of its latest version
type SelectedSet map[string]*model.Document

// Sorted returns the selected documents ordered by source
func (s SelectedSet) Sorted() []*model.Document {
	res := make([]*model.Document, 0, len(s))
	for _, d := range s {
		res = append(res, d)
	}
	slices.SortFunc(res, func(a, b *model.Document) int {
		return cmp.Compare(a.Source, b.Source)
	})
	return res
}

// SelectLatest returns one document per distinct package id: the one with the greatest release date,
// and among those the greatest version. Both are compared as plain strings.
// Documents equal in both are decided in favor of the lexicographically smaller source, so the result
// does not depend on the order of docs
func SelectLatest(docs []*model.Document) SelectedSet {
	res := make(SelectedSet)
	for _, d := range docs {
		current, ok := res[d.ID]
		if !ok || newer(d, current) {
			res[d.ID] = d
		}
	}
	return res
}

func newer(d, than *model.Document) bool {
	if c := cmp.Compare(d.Release.Date, than.Release.Date); c != 0 {
		return c > 0
	}
	if c := cmp.Compare(d.Version, than.Version); c != 0 {
		return c > 0
	}
	return d.Source < than.Source
}
