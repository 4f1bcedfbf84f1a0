// Package cluster partitions vault notes into disjoint topic clusters.
//
// Tags seed clusters, most populated tag first; each seed is grown by one
// level of outbound wikilinks; a note claimed by one cluster can never seed
// or join another. The whole pipeline is pure and deterministic for a fixed
// clock.
package cluster

import (
	"strings"
	"time"

	"github.com/starford/topicscout/internal/models"
)

// DefaultRecentWindow is how far back a modification counts as recent activity.
const DefaultRecentWindow = 30 * 24 * time.Hour

// TopicCluster is a group of notes believed to share one topic. Notes point
// into the caller's note slice; a cluster never owns them.
type TopicCluster struct {
	Name           string         `json:"name"`
	Notes          []*models.Note `json:"notes"`
	TotalWords     int            `json:"total_words"`
	Tags           []string       `json:"tags"`
	RecentActivity bool           `json:"recent_activity"`
	SeedSize       int            `json:"seed_size"`
}

// Words recomputes the member word count sum.
func (c *TopicCluster) Words() int {
	total := 0
	for _, n := range c.Notes {
		total += n.WordCount
	}
	return total
}

// Titles returns member titles in member order.
func (c *TopicCluster) Titles() []string {
	out := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		out[i] = n.Title
	}
	return out
}

type options struct {
	now    time.Time
	window time.Duration
}

// Option configures cluster building.
type Option func(*options)

// WithNow freezes the clock used for the recency check.
func WithNow(now time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRecentWindow overrides DefaultRecentWindow. Non-positive values are ignored.
func WithRecentWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.window = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{window: DefaultRecentWindow}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = time.Now()
	}
	return o
}

// BuildClusters runs Tag Index, Link Resolver and Cluster Builder over notes
// and returns clusters in tag-popularity order. Empty input yields an empty,
// non-nil slice.
func BuildClusters(notes []models.Note, opts ...Option) []TopicCluster {
	idx := BuildTagIndex(notes)
	resolver := NewResolver(notes)
	return NewBuilder(resolver, opts...).Build(idx)
}

// FilterClusters keeps clusters with at least minNotes members and minWords
// total words, preserving order.
func FilterClusters(clusters []TopicCluster, minNotes, minWords int) []TopicCluster {
	out := make([]TopicCluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Notes) >= minNotes && c.TotalWords >= minWords {
			out = append(out, c)
		}
	}
	return out
}

// Top returns at most n leading clusters.
func Top(clusters []TopicCluster, n int) []TopicCluster {
	if n < 0 || n >= len(clusters) {
		return clusters
	}
	return clusters[:n]
}

// Lookup finds a cluster by seed tag, case-insensitively.
func Lookup(clusters []TopicCluster, name string) (TopicCluster, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range clusters {
		if c.Name == key {
			return c, true
		}
	}
	return TopicCluster{}, false
}
