package descriptor

import (
	"sort"
	"strconv"
	"strings"
)

// IndexedVar is a sparse integer-keyed collection serialized as
// "{Name}{index}" entries. Indices need not be contiguous; serialization
// always walks them in ascending numeric order. Keys must be non-negative,
// which Validate enforces before submission.
type IndexedVar map[int]string

// NextAvailableIndex returns the lowest unused non-negative index.
func (v IndexedVar) NextAvailableIndex() int {
	i := 0
	for {
		if _, ok := v[i]; !ok {
			return i
		}
		i++
	}
}

// Append stores value at the lowest unused index and returns that index.
func (v IndexedVar) Append(value string) int {
	i := v.NextAvailableIndex()
	v[i] = value
	return i
}

// Add appends value only if it is not already present.
func (v IndexedVar) Add(value string) {
	for _, existing := range v {
		if existing == value {
			return
		}
	}
	v.Append(value)
}

// Extend appends every value in order.
func (v IndexedVar) Extend(values []string) {
	for _, value := range values {
		v.Append(value)
	}
}

// SortedIndices returns the indices in ascending order.
func (v IndexedVar) SortedIndices() []int {
	indices := make([]int, 0, len(v))
	for i := range v {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Clone returns a copy of the collection.
func (v IndexedVar) Clone() IndexedVar {
	out := make(IndexedVar, len(v))
	for i, value := range v {
		out[i] = value
	}
	return out
}

// KeyValueVar is a string map serialized as "{Name}{i}" = "key=value"
// entries. Pairs are emitted in ascending alphabetical order of key, not
// insertion order; the farm wire format requires that ordering.
type KeyValueVar map[string]string

// Merge copies all entries of m into the collection, overriding existing
// keys.
func (v KeyValueVar) Merge(m map[string]string) {
	for key, value := range m {
		v[key] = value
	}
}

// SortedKeys returns the keys in ascending alphabetical order.
func (v KeyValueVar) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the collection.
func (v KeyValueVar) Clone() KeyValueVar {
	out := make(KeyValueVar, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// expandName resolves the index placeholder in a field name template.
// A template may position the index explicitly ("OutputFilename{}Tile");
// without a placeholder the index is appended ("ExtraInfo" -> "ExtraInfo0").
func expandName(name string, index int) string {
	idx := strconv.Itoa(index)
	if strings.Contains(name, "{}") {
		return strings.Replace(name, "{}", idx, 1)
	}
	return name + idx
}

// SerializeIndexed flattens v into out under the given name template,
// walking indices in ascending order.
func SerializeIndexed(name string, v IndexedVar, out map[string]interface{}) {
	for _, i := range v.SortedIndices() {
		out[expandName(name, i)] = v[i]
	}
}

// SerializeKeyValue flattens v into out as "key=value" entries numbered in
// ascending alphabetical order of key.
func SerializeKeyValue(name string, v KeyValueVar, out map[string]interface{}) {
	for i, key := range v.SortedKeys() {
		out[expandName(name, i)] = key + "=" + v[key]
	}
}

// SplitList parses a comma-separated list field into its ordered non-empty
// tokens.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// JoinList renders a list field as the comma-separated wire form.
func JoinList(values []string) string {
	return strings.Join(values, ",")
}
