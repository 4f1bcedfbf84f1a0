// Package report turns topic clusters into a human-readable readiness report.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/topicscout/internal/cluster"
)

// NoClustersMessage is returned for an empty cluster list instead of calling
// a model.
const NoClustersMessage = "No topic clusters found. Try adding more notes with tags or links."

// Summarizer renders a report for already filtered clusters.
type Summarizer interface {
	Summarize(ctx context.Context, clusters []cluster.TopicCluster) (string, error)
}

// Outline is an offline Summarizer listing each cluster and its note titles.
type Outline struct{}

// Summarize never fails.
func (Outline) Summarize(_ context.Context, clusters []cluster.TopicCluster) (string, error) {
	if len(clusters) == 0 {
		return NoClustersMessage, nil
	}
	var b strings.Builder
	for i, c := range clusters {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %d notes, %d words\n", c.Name, len(c.Notes), c.TotalWords)
		for _, n := range c.Notes {
			fmt.Fprintf(&b, "  - %s\n", n.Title)
		}
	}
	return b.String(), nil
}
