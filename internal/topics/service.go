// Package topics runs the clustering pipeline against a note source and
// hands the result to a summarizer and notification sinks.
package topics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/topicscout/internal/apperr"
	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/metrics"
	"github.com/starford/topicscout/internal/models"
	"github.com/starford/topicscout/internal/notify"
	"github.com/starford/topicscout/internal/report"
)

// Default thresholds applied when a request leaves them at zero.
const (
	DefaultMinNotes = 3
	DefaultMinWords = 500
)

// NoteSource yields the current snapshot of the vault.
type NoteSource interface {
	Notes(ctx context.Context) ([]models.Note, error)
}

// Searcher runs full-text queries. Only the live index provides one.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// AnalyzeRequest selects thresholds and side effects for one run. A nil
// threshold uses the service default; an explicit zero disables that limit.
type AnalyzeRequest struct {
	MinNotes *int
	MinWords *int
	DryRun   bool
	Notify   bool
}

// Analysis is the outcome of one run.
type Analysis struct {
	ID          string                 `json:"id"`
	NoteCount   int                    `json:"note_count"`
	Clusters    []cluster.TopicCluster `json:"clusters"`
	Report      string                 `json:"report"`
	DryRun      bool                   `json:"dry_run"`
	Notified    bool                   `json:"notified"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Service is safe for concurrent use when its collaborators are.
type Service struct {
	notes      NoteSource
	searcher   Searcher
	summarizer report.Summarizer
	sink       notify.Sink
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	window     time.Duration
	minNotes   int
	minWords   int
}

// Option configures a Service.
type Option func(*Service)

// WithSummarizer sets the model-backed summarizer used outside dry runs.
func WithSummarizer(s report.Summarizer) Option {
	return func(svc *Service) { svc.summarizer = s }
}

// WithSink sets where reports go when a request asks for notification.
func WithSink(s notify.Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithSearcher enables Search.
func WithSearcher(s Searcher) Option {
	return func(svc *Service) { svc.searcher = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithClock replaces time.Now for recency checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithRecentWindow sets how far back a modification counts as recent.
func WithRecentWindow(d time.Duration) Option {
	return func(svc *Service) { svc.window = d }
}

// WithDefaults overrides the thresholds used when a request leaves them
// unset. Negative values are ignored.
func WithDefaults(minNotes, minWords int) Option {
	return func(svc *Service) {
		if minNotes >= 0 {
			svc.minNotes = minNotes
		}
		if minWords >= 0 {
			svc.minWords = minWords
		}
	}
}

// NewService creates a Service reading notes from src.
func NewService(src NoteSource, opts ...Option) *Service {
	svc := &Service{
		notes:    src,
		logger:   slog.Default(),
		now:      time.Now,
		window:   cluster.DefaultRecentWindow,
		minNotes: DefaultMinNotes,
		minWords: DefaultMinWords,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Defaults returns the thresholds used when a request leaves them unset.
func (s *Service) Defaults() (minNotes, minWords int) {
	return s.minNotes, s.minWords
}

// Thresholds resolves optional thresholds against the service defaults.
// Negative values are rejected.
func (s *Service) Thresholds(minNotes, minWords *int) (int, int, error) {
	n, w := s.minNotes, s.minWords
	if minNotes != nil {
		n = *minNotes
	}
	if minWords != nil {
		w = *minWords
	}
	if n < 0 || w < 0 {
		return 0, 0, fmt.Errorf("topics: negative threshold: %w", apperr.ErrInvalidInput)
	}
	return n, w, nil
}

// Clusters builds and filters clusters. Nil thresholds fall back to the
// service defaults.
func (s *Service) Clusters(ctx context.Context, minNotes, minWords *int) ([]cluster.TopicCluster, error) {
	_, filtered, err := s.run(ctx, minNotes, minWords)
	return filtered, err
}

// Cluster returns the unfiltered cluster seeded by name.
func (s *Service) Cluster(ctx context.Context, name string) (cluster.TopicCluster, error) {
	notes, err := s.notes.Notes(ctx)
	if err != nil {
		return cluster.TopicCluster{}, fmt.Errorf("topics: load notes: %w", err)
	}
	c, ok := cluster.Lookup(s.build(notes), name)
	if !ok {
		return cluster.TopicCluster{}, fmt.Errorf("topics: cluster %q: %w", name, apperr.ErrNotFound)
	}
	return c, nil
}

// Analyze runs the whole pipeline. A summarizer failure fails the run;
// notification failures are only logged.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	mode := "full"
	if req.DryRun {
		mode = "dry_run"
	}
	a, err := s.analyze(ctx, req)
	if err != nil {
		s.metrics.ObserveAnalysis(mode, err, 0, 0)
		return nil, err
	}
	s.metrics.ObserveAnalysis(mode, nil, a.NoteCount, len(a.Clusters))
	return a, nil
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	noteCount, filtered, err := s.run(ctx, req.MinNotes, req.MinWords)
	if err != nil {
		return nil, err
	}

	text := report.NoClustersMessage
	if len(filtered) > 0 {
		if text, err = s.summarize(ctx, filtered, req.DryRun); err != nil {
			return nil, err
		}
	}

	a := &Analysis{
		ID:          uuid.NewString(),
		NoteCount:   noteCount,
		Clusters:    filtered,
		Report:      text,
		DryRun:      req.DryRun,
		GeneratedAt: s.now().UTC(),
	}

	// Nothing worth announcing on a dry run or an empty result.
	if req.Notify && !req.DryRun && len(filtered) > 0 && s.sink != nil {
		if err := s.sink.Send(ctx, text); err != nil {
			s.logger.Warn("topics: notify failed", slog.String("analysis", a.ID), slog.String("error", err.Error()))
		} else {
			a.Notified = true
		}
	}

	s.logger.Info("topics: analysis done",
		slog.String("analysis", a.ID),
		slog.Int("notes", noteCount),
		slog.Int("clusters", len(filtered)),
		slog.Bool("dry_run", req.DryRun))
	return a, nil
}

func (s *Service) summarize(ctx context.Context, clusters []cluster.TopicCluster, dryRun bool) (string, error) {
	var summarizer report.Summarizer = report.Outline{}
	name := "outline"
	if !dryRun {
		if s.summarizer == nil {
			return "", fmt.Errorf("topics: summarizer: %w", apperr.ErrNotConfigured)
		}
		summarizer, name = s.summarizer, "claude"
	}

	start := time.Now()
	text, err := summarizer.Summarize(ctx, clusters)
	s.metrics.ObserveSummarize(name, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("topics: summarize: %w", err)
	}
	return text, nil
}

// Search queries the live index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("topics: search: %w", apperr.ErrNotConfigured)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("topics: search: empty query: %w", apperr.ErrInvalidInput)
	}
	return s.searcher.Search(query, limit)
}

func (s *Service) run(ctx context.Context, minNotesOpt, minWordsOpt *int) (int, []cluster.TopicCluster, error) {
	minNotes, minWords, err := s.Thresholds(minNotesOpt, minWordsOpt)
	if err != nil {
		return 0, nil, err
	}

	notes, err := s.notes.Notes(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("topics: load notes: %w", err)
	}
	return len(notes), cluster.FilterClusters(s.build(notes), minNotes, minWords), nil
}

func (s *Service) build(notes []models.Note) []cluster.TopicCluster {
	return cluster.BuildClusters(notes,
		cluster.WithNow(s.now()),
		cluster.WithRecentWindow(s.window),
	)
}
