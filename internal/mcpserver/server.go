// Package mcpserver exposes topic clusters to LLM clients over MCP stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/topics"
)

const (
	clusterRulesURI    = "topicscout://cluster-rules"
	defaultSearchLimit = 20
)

// Service is the topic pipeline the tools call into.
type Service interface {
	Clusters(ctx context.Context, minNotes, minWords *int) ([]cluster.TopicCluster, error)
	Cluster(ctx context.Context, name string) (cluster.TopicCluster, error)
	Analyze(ctx context.Context, req topics.AnalyzeRequest) (*topics.Analysis, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
}

// Backlinker finds notes linking to a target.
type Backlinker interface {
	Backlinks(target string) ([]string, error)
}

// Server wraps the MCP server with topicscout tools.
type Server struct {
	mcp   *server.MCPServer
	svc   Service
	links Backlinker
}

// clusterSummary is the compact per-cluster shape returned by tools.
type clusterSummary struct {
	Name           string   `json:"name"`
	NoteCount      int      `json:"note_count"`
	TotalWords     int      `json:"total_words"`
	Tags           []string `json:"tags"`
	RecentActivity bool     `json:"recent_activity"`
	Notes          []string `json:"notes"`
}

func summarize(c cluster.TopicCluster) clusterSummary {
	paths := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		paths[i] = n.Path
	}
	return clusterSummary{
		Name:           c.Name,
		NoteCount:      len(c.Notes),
		TotalWords:     c.TotalWords,
		Tags:           c.Tags,
		RecentActivity: c.RecentActivity,
		Notes:          paths,
	}
}

// New creates a server with all tools registered. links may be nil, in
// which case get_backlinks is not offered.
func New(svc Service, links Backlinker, version string) *Server {
	s := &Server{svc: svc, links: links}

	s.mcp = server.NewMCPServer(
		"topicscout",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_clusters",
		mcp.WithDescription("List topic clusters large enough to become a blog post. "+
			"Read topicscout://cluster-rules for how clusters are formed."),
		mcp.WithNumber("min_notes", mcp.Description("Minimum notes per cluster (default from config)")),
		mcp.WithNumber("min_words", mcp.Description("Minimum combined words (default from config)")),
	), s.listClusters)

	s.mcp.AddTool(mcp.NewTool("get_cluster",
		mcp.WithDescription("Get the cluster seeded by a tag, including notes below the size filter."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Seed tag, case-insensitive")),
	), s.getCluster)

	s.mcp.AddTool(mcp.NewTool("analyze_topics",
		mcp.WithDescription("Run a blog-readiness analysis and return the report."),
		mcp.WithNumber("min_notes", mcp.Description("Minimum notes per cluster")),
		mcp.WithNumber("min_words", mcp.Description("Minimum combined words")),
		mcp.WithBoolean("dry_run", mcp.Description("List clusters without calling the model")),
		mcp.WithBoolean("notify", mcp.Description("Also send the report to configured chat sinks")),
	), s.analyzeTopics)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchNotes)

	if links != nil {
		s.mcp.AddTool(mcp.NewTool("get_backlinks",
			mcp.WithDescription("Find all notes that link to the specified note."),
			mcp.WithString("target", mcp.Required(), mcp.Description("Link target, usually a file name without .md")),
		), s.getBacklinks)
	}

	s.mcp.AddResource(
		mcp.NewResource(clusterRulesURI, "Cluster Rules",
			mcp.WithResourceDescription("How notes are grouped into topic clusters and filtered."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readClusterRules,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// optionalInt returns nil when the argument is absent so the configured
// default applies.
func optionalInt(req mcp.CallToolRequest, key string) *int {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := req.GetInt(key, 0)
	return &v
}

func (s *Server) listClusters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clusters, err := s.svc.Clusters(ctx, optionalInt(req, "min_notes"), optionalInt(req, "min_words"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]clusterSummary, len(clusters))
	for i, c := range clusters {
		out[i] = summarize(c)
	}
	return jsonResult(out), nil
}

func (s *Server) getCluster(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Cluster(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summarize(c)), nil
}

func (s *Server) analyzeTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.svc.Analyze(ctx, topics.AnalyzeRequest{
		MinNotes: optionalInt(req, "min_notes"),
		MinWords: optionalInt(req, "min_words"),
		DryRun:   req.GetBool("dry_run", false),
		Notify:   req.GetBool("notify", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	header := fmt.Sprintf("Analysis %s: %d notes, %d clusters\n\n", a.ID, a.NoteCount, len(a.Clusters))
	return mcp.NewToolResultText(header + a.Report), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getBacklinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.links.Backlinks(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) readClusterRules(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      clusterRulesURI,
			MIMEType: "text/markdown",
			Text:     ClusterRules,
		},
	}, nil
}
