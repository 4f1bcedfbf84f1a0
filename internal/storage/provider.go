// Package storage defines the read-only vault file-system abstraction.
package storage

import "github.com/starford/topicscout/internal/models"

// Provider is the interface for vault file access. Paths are relative to the
// vault root and slash-separated.
type Provider interface {
	// List returns metadata for every visible .md file under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether dir exists and is a directory.
	Exists(dir string) bool
}
