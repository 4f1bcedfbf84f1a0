// Package models defines the domain types for topicscout.
package models

import (
	"errors"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Note is a parsed Markdown file from the vault. Notes are immutable once
// loaded; clusters hold pointers into the loaded slice.
type Note struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Body       string    `json:"-"`
	Tags       []string  `json:"tags"`
	Links      []string  `json:"links,omitempty"`
	WordCount  int       `json:"word_count"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Stem returns the lower-cased file name without directory or extension.
// Wikilinks resolve against this key, not against the display title.
func (n *Note) Stem() string {
	base := path.Base(n.Path)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}

// Validate checks that the record is well formed enough to be clustered.
func (n *Note) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Path, validation.Required, validation.By(markdownPath)),
		validation.Field(&n.WordCount, validation.Min(0)),
	)
}

func markdownPath(value any) error {
	p, _ := value.(string)
	if !strings.HasSuffix(p, ".md") {
		return errors.New("must end with .md")
	}
	return nil
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CountWords returns the number of whitespace-separated words in body.
func CountWords(body string) int {
	return len(strings.Fields(body))
}
