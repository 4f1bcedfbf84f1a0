package cluster

import (
	"maps"
	"strings"

	"github.com/starford/topicscout/internal/models"
)

// minSeed is the smallest unclaimed tag bucket that may start a cluster.
const minSeed = 2

// Claimed is the set of note paths already assigned to a cluster in one pass.
// Steps never mutate the set they receive; they return an extended copy.
type Claimed map[string]struct{}

// Has reports whether n is claimed.
func (c Claimed) Has(n *models.Note) bool {
	_, ok := c[n.Path]
	return ok
}

// With returns a new set holding c plus notes.
func (c Claimed) With(notes []*models.Note) Claimed {
	next := maps.Clone(c)
	if next == nil {
		next = make(Claimed, len(notes))
	}
	for _, n := range notes {
		next[n.Path] = struct{}{}
	}
	return next
}

// Builder turns a tag index into disjoint clusters.
type Builder struct {
	resolver *Resolver
	opts     options
}

// NewBuilder creates a Builder that expands clusters through resolver.
func NewBuilder(resolver *Resolver, opts ...Option) *Builder {
	return &Builder{resolver: resolver, opts: newOptions(opts)}
}

// Build walks tags by popularity and emits one cluster per tag that still
// has at least two unclaimed notes.
func (b *Builder) Build(idx *TagIndex) []TopicCluster {
	out := make([]TopicCluster, 0)
	claimed := Claimed{}
	for _, tag := range idx.ByPopularity() {
		c, next, ok := b.Step(tag, idx.Notes(tag), claimed)
		if !ok {
			continue
		}
		out = append(out, c)
		claimed = next
	}
	return out
}

// Step tries to seed a cluster from one tag bucket. It returns the cluster,
// the claimed set extended with its members, and whether a cluster was
// formed. When no cluster forms, claimed is returned unchanged.
func (b *Builder) Step(tag string, bucket []*models.Note, claimed Claimed) (TopicCluster, Claimed, bool) {
	seed := unclaimed(bucket, claimed)
	if len(seed) < minSeed {
		return TopicCluster{}, claimed, false
	}
	members := b.expand(seed, claimed)
	return b.materialize(tag, len(seed), members), claimed.With(members), true
}

func unclaimed(bucket []*models.Note, claimed Claimed) []*models.Note {
	out := make([]*models.Note, 0, len(bucket))
	for _, n := range bucket {
		if !claimed.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// expand follows outbound links of the seed notes only, one level deep.
// Links of notes pulled in here are not followed.
func (b *Builder) expand(seed []*models.Note, claimed Claimed) []*models.Note {
	members := append(make([]*models.Note, 0, len(seed)), seed...)
	in := make(map[string]struct{}, len(seed))
	for _, n := range seed {
		in[n.Path] = struct{}{}
	}
	for _, n := range seed {
		for _, link := range n.Links {
			linked, ok := b.resolver.Resolve(link)
			if !ok || claimed.Has(linked) {
				continue
			}
			if _, dup := in[linked.Path]; dup {
				continue
			}
			in[linked.Path] = struct{}{}
			members = append(members, linked)
		}
	}
	return members
}

func (b *Builder) materialize(tag string, seedSize int, members []*models.Note) TopicCluster {
	c := TopicCluster{
		Name:     strings.ToLower(tag),
		Notes:    members,
		Tags:     unionTags(members),
		SeedSize: seedSize,
	}
	c.TotalWords = c.Words()
	cutoff := b.opts.now.Add(-b.opts.window)
	for _, n := range members {
		if n.ModifiedAt.After(cutoff) {
			c.RecentActivity = true
			break
		}
	}
	return c
}

func unionTags(notes []*models.Note) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, n := range notes {
		for _, t := range n.Tags {
			key := strings.ToLower(t)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
