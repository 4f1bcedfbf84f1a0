package cluster

import (
	"strings"

	"github.com/starford/topicscout/internal/models"
)

// Resolver maps wikilink targets to notes by lower-cased file stem.
type Resolver struct {
	byStem map[string]*models.Note
}

// NewResolver indexes notes by stem. When two notes share a stem the later
// one in input order wins.
func NewResolver(notes []models.Note) *Resolver {
	r := &Resolver{byStem: make(map[string]*models.Note, len(notes))}
	for i := range notes {
		r.byStem[notes[i].Stem()] = &notes[i]
	}
	return r
}

// Resolve returns the note a link target points at. Targets without a
// matching note report false and are meant to be skipped.
func (r *Resolver) Resolve(target string) (*models.Note, bool) {
	n, ok := r.byStem[strings.ToLower(strings.TrimSpace(target))]
	return n, ok
}
