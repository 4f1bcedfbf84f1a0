package index

import (
	"context"
	"strings"

	"github.com/starford/topicscout/internal/models"
)

// Source serves indexed notes limited to a set of vault folders.
type Source struct {
	db      *DB
	folders []string
}

// NewSource scopes db to folders; no folders means the whole vault.
func NewSource(db *DB, folders []string) *Source {
	clean := make([]string, 0, len(folders))
	for _, f := range folders {
		f = strings.Trim(strings.TrimSpace(f), "/")
		if f != "" {
			clean = append(clean, f)
		}
	}
	return &Source{db: db, folders: clean}
}

// Notes returns indexed notes under the configured folders, ordered by path.
func (s *Source) Notes(ctx context.Context) ([]models.Note, error) {
	notes, err := s.db.Notes(ctx)
	if err != nil || len(s.folders) == 0 {
		return notes, err
	}
	out := notes[:0]
	for _, n := range notes {
		if s.inScope(n.Path) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Source) inScope(path string) bool {
	for _, f := range s.folders {
		if strings.HasPrefix(path, f+"/") {
			return true
		}
	}
	return false
}
