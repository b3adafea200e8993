package model

import "slices"

// AllowList is the curated set of acceptable values for selected manifest fields.
// An empty set does not restrict its dimension.
type AllowList struct {
	Brands   []string `json:"brands" yaml:"brands"`
	Models   []string `json:"models" yaml:"models"`
	MCUs     []string `json:"mcus" yaml:"mcus"`
	Regions  []string `json:"regions" yaml:"regions"`
	Features []string `json:"features" yaml:"features"`
	Scenes   []string `json:"scenes" yaml:"scenes"`
}

// ValueSet is a set of allowed values. The zero value allows everything.
type ValueSet map[string]struct{}

func NewValueSet(values []string) ValueSet {
	if len(values) == 0 {
		return nil
	}
	s := make(ValueSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Enforced reports whether the set restricts values at all
func (s ValueSet) Enforced() bool {
	return len(s) > 0
}

// Allows reports whether v is acceptable under this set
func (s ValueSet) Allows(v string) bool {
	if !s.Enforced() {
		return true
	}
	_, ok := s[v]
	return ok
}

// Sorted returns the set's values in ascending order
func (s ValueSet) Sorted() []string {
	res := make([]string, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	slices.Sort(res)
	return res
}
