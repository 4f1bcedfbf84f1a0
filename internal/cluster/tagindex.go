package cluster

import (
	"sort"
	"strings"

	"github.com/starford/topicscout/internal/models"
)

// TagIndex maps lower-cased tags to the notes carrying them, in input order.
// A note appears under every tag it carries.
type TagIndex struct {
	buckets map[string][]*models.Note
	order   []string
}

// BuildTagIndex builds the inverted tag index over notes.
func BuildTagIndex(notes []models.Note) *TagIndex {
	idx := &TagIndex{buckets: make(map[string][]*models.Note)}
	for i := range notes {
		n := &notes[i]
		seen := make(map[string]struct{}, len(n.Tags))
		for _, tag := range n.Tags {
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, known := idx.buckets[key]; !known {
				idx.order = append(idx.order, key)
			}
			idx.buckets[key] = append(idx.buckets[key], n)
		}
	}
	return idx
}

// Len returns the number of distinct tags.
func (idx *TagIndex) Len() int {
	return len(idx.order)
}

// Notes returns the bucket for tag (matched case-insensitively).
func (idx *TagIndex) Notes(tag string) []*models.Note {
	return idx.buckets[strings.ToLower(tag)]
}

// Tags returns tags in first-encounter order.
func (idx *TagIndex) Tags() []string {
	return append([]string(nil), idx.order...)
}

// ByPopularity returns tags by descending bucket size. Equal sizes keep
// first-encounter order.
func (idx *TagIndex) ByPopularity() []string {
	tags := idx.Tags()
	sort.SliceStable(tags, func(i, j int) bool {
		return len(idx.buckets[tags[i]]) > len(idx.buckets[tags[j]])
	})
	return tags
}
