package holder

import (
	"sort"
	"strings"
)

// Requirements lists, for every entity known by h, the fields h reads.
func Requirements(h Holder) map[string][]string {
	fields := h.Dependency()
	out := make(map[string][]string)
	for _, name := range h.SymbolList() {
		out[name] = append([]string(nil), fields...)
	}
	return out
}

// DependencyCalculator merges entity -> fields requirements and inverts
// them into field -> entities. Names are lower-cased and sorted.
func DependencyCalculator(requirements ...map[string][]string) map[string][]string {
	sets := map[string]map[string]struct{}{}
	for _, req := range requirements {
		for name, fields := range req {
			name = strings.ToLower(name)
			for _, field := range fields {
				field = strings.ToLower(field)
				if sets[field] == nil {
					sets[field] = map[string]struct{}{}
				}
				sets[field][name] = struct{}{}
			}
		}
	}

	out := make(map[string][]string, len(sets))
	for field, names := range sets {
		list := make([]string, 0, len(names))
		for name := range names {
			list = append(list, name)
		}
		sort.Strings(list)
		out[field] = list
	}
	return out
}
