// Package descriptor provides property-based tests for the wire
// serialization of job descriptors.
package descriptor

import (
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestIndexedVarAppendProperty checks that Append always picks the lowest
// unused non-negative index, for any sparse set of occupied indices.
func TestIndexedVarAppendProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("append picks lowest unused index", prop.ForAll(
		func(indices []int) bool {
			v := make(IndexedVar)
			for _, i := range indices {
				if i < 0 {
					i = -i
				}
				v[i%32] = "x"
			}

			// Expected: smallest non-negative integer not occupied.
			expected := 0
			for {
				if _, ok := v[expected]; !ok {
					break
				}
				expected++
			}

			return v.Append("new") == expected
		},
		gen.SliceOf(gen.IntRange(0, 31)),
	))

	properties.Property("repeated appends occupy a contiguous range", prop.ForAll(
		func(count int) bool {
			v := make(IndexedVar)
			for i := 0; i < count; i++ {
				if v.Append("x") != i {
					return false
				}
			}
			return len(v) == count
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

// TestKeyValueSerializationProperty checks that key-value collections are
// always emitted in ascending alphabetical key order regardless of
// insertion order.
func TestKeyValueSerializationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("pairs numbered by sorted key", prop.ForAll(
		func(keys []string) bool {
			v := make(KeyValueVar)
			for _, key := range keys {
				if key == "" || strings.Contains(key, "=") {
					continue
				}
				v[key] = "value"
			}

			out := make(map[string]interface{})
			SerializeKeyValue("Env", v, out)

			sorted := v.SortedKeys()
			if !sort.StringsAreSorted(sorted) {
				return false
			}
			for i, key := range sorted {
				entry, ok := out[expandName("Env", i)].(string)
				if !ok {
					return false
				}
				if entry != key+"="+v[key] {
					return false
				}
			}
			return len(out) == len(v)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestListRoundTripProperty checks that comma-joined list fields are
// lossless for lists of non-empty comma-free tokens.
func TestListRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("split(join(list)) == list", prop.ForAll(
		func(tokens []string) bool {
			var cleaned []string
			for _, token := range tokens {
				token = strings.TrimSpace(token)
				if token == "" || strings.Contains(token, ",") {
					continue
				}
				cleaned = append(cleaned, token)
			}

			d := New("MayaBatch")
			d.SetWhitelistString(JoinList(cleaned))

			if len(cleaned) == 0 {
				return len(d.Whitelist) == 0
			}
			if len(d.Whitelist) != len(cleaned) {
				return false
			}
			for i := range cleaned {
				if d.Whitelist[i] != cleaned[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
