package model

import "sort"

// FieldSet is an allow-list of upstream field names.
type FieldSet []string

// Has reports whether name is in the set.
func (fs FieldSet) Has(name string) bool {
	for _, f := range fs {
		if f == name {
			return true
		}
	}
	return false
}

// Without returns a copy of fs minus the given names.
func (fs FieldSet) Without(names ...string) FieldSet {
	drop := FieldSet(names)
	out := make(FieldSet, 0, len(fs))
	for _, f := range fs {
		if !drop.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Pick copies the allowed keys of src. Unknown keys are dropped silently.
// With dropNull set, keys whose value is null are dropped as well.
func (fs FieldSet) Pick(src map[string]any, dropNull bool) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		if !fs.Has(k) {
			continue
		}
		if dropNull && v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Keys returns the keys of m in sorted order.
func Keys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
