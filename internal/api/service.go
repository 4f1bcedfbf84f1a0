package api

import (
	"context"
	"net/http"

	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/topics"
)

// Service is the topic pipeline as seen by the HTTP layer.
type Service interface {
	Thresholds(minNotes, minWords *int) (int, int, error)
	Clusters(ctx context.Context, minNotes, minWords *int) ([]cluster.TopicCluster, error)
	Cluster(ctx context.Context, name string) (cluster.TopicCluster, error)
	Analyze(ctx context.Context, req topics.AnalyzeRequest) (*topics.Analysis, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
}

// Events streams server-sent events and announces finished analyses.
type Events interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
	PublishAnalysis(id string, clusters int, dryRun bool)
}

var _ Service = (*topics.Service)(nil)
