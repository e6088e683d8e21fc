package item

import (
	"slices"
	"strings"

	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// Filter selects records by brand key and free-text query. Empty fields
// match everything.
type Filter struct {
	Query string
	Brand string
}

// Match reports whether rec passes the filter. The query is matched
// case-insensitively against the title, file name, description and the
// three shop links.
func (f Filter) Match(rec itemload.ItemRecord) bool {
	it, _ := Decode(rec)
	if f.Brand != "" && it.BrandKey() != f.Brand {
		return false
	}
	if f.Query == "" {
		return true
	}

	haystack := strings.ToLower(strings.Join([]string{
		it.Title, rec.File, it.Desc, it.AURL, it.YURL, it.RURL,
	}, " "))
	return strings.Contains(haystack, strings.ToLower(f.Query))
}

// Apply returns the records that pass the filter, in their original order.
func (f Filter) Apply(records []itemload.ItemRecord) []itemload.ItemRecord {
	out := make([]itemload.ItemRecord, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// BrandSet is the sorted set of brand keys seen so far. It grows one
// record at a time so callers never rescan what they already hold.
type BrandSet struct {
	keys []string
}

// Add records key and reports whether it was new.
func (s *BrandSet) Add(key string) bool {
	i, found := slices.BinarySearch(s.keys, key)
	if found {
		return false
	}
	s.keys = slices.Insert(s.keys, i, key)
	return true
}

// Keys returns the brand keys in sorted order. The slice is owned by s.
func (s *BrandSet) Keys() []string {
	return s.keys
}

// Index returns the position of key in Keys, or -1.
func (s *BrandSet) Index(key string) int {
	i, found := slices.BinarySearch(s.keys, key)
	if !found {
		return -1
	}
	return i
}
