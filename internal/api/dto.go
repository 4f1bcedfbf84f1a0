package api

import (
	"time"

	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/topics"
)

// NoteRef is a cluster member in API responses.
type NoteRef struct {
	Path       string    `json:"path" example:"ideas/rust-ownership.md" validate:"required"`
	Title      string    `json:"title" example:"Rust ownership" validate:"required"`
	WordCount  int       `json:"word_count" example:"420"`
	Tags       []string  `json:"tags"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ClusterResponse is one topic cluster.
type ClusterResponse struct {
	Name           string    `json:"name" example:"rust" validate:"required"`
	NoteCount      int       `json:"note_count" example:"4"`
	TotalWords     int       `json:"total_words" example:"1800"`
	Tags           []string  `json:"tags"`
	RecentActivity bool      `json:"recent_activity"`
	SeedSize       int       `json:"seed_size" example:"3"`
	Notes          []NoteRef `json:"notes" validate:"required"`
}

// ClusterListResponse wraps filtered clusters.
type ClusterListResponse struct {
	Clusters []ClusterResponse `json:"clusters" validate:"required"`
	Total    int               `json:"total" example:"2"`
	MinNotes int               `json:"min_notes" example:"3"`
	MinWords int               `json:"min_words" example:"500"`
}

// AnalyzeRequest is the body of POST /analyze. Omitted thresholds use the
// configured defaults.
// An explicit zero disables that limit.
type AnalyzeRequest struct {
	MinNotes *int `json:"min_notes,omitempty" example:"3"`
	MinWords *int `json:"min_words,omitempty" example:"500"`
	DryRun   bool `json:"dry_run"`
	Notify   bool `json:"notify"`
}

// AnalysisResponse is the outcome of one analysis run.
type AnalysisResponse struct {
	ID          string            `json:"id" validate:"required"`
	NoteCount   int               `json:"note_count"`
	Clusters    []ClusterResponse `json:"clusters" validate:"required"`
	Report      string            `json:"report"`
	DryRun      bool              `json:"dry_run"`
	Notified    bool              `json:"notified"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

func toClusterResponse(c cluster.TopicCluster) ClusterResponse {
	notes := make([]NoteRef, len(c.Notes))
	for i, n := range c.Notes {
		notes[i] = NoteRef{
			Path:       n.Path,
			Title:      n.Title,
			WordCount:  n.WordCount,
			Tags:       nonNil(n.Tags),
			ModifiedAt: n.ModifiedAt,
		}
	}
	return ClusterResponse{
		Name:           c.Name,
		NoteCount:      len(c.Notes),
		TotalWords:     c.TotalWords,
		Tags:           nonNil(c.Tags),
		RecentActivity: c.RecentActivity,
		SeedSize:       c.SeedSize,
		Notes:          notes,
	}
}

func toClusterList(cs []cluster.TopicCluster) []ClusterResponse {
	out := make([]ClusterResponse, len(cs))
	for i, c := range cs {
		out[i] = toClusterResponse(c)
	}
	return out
}

func toAnalysisResponse(a *topics.Analysis) AnalysisResponse {
	return AnalysisResponse{
		ID:          a.ID,
		NoteCount:   a.NoteCount,
		Clusters:    toClusterList(a.Clusters),
		Report:      a.Report,
		DryRun:      a.DryRun,
		Notified:    a.Notified,
		GeneratedAt: a.GeneratedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
