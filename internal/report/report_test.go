package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/starford/topicscout/internal/apperr"
	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/models"
)

func sampleClusters(n int) []cluster.TopicCluster {
	out := make([]cluster.TopicCluster, n)
	for i := range out {
		notes := make([]*models.Note, 6)
		for j := range notes {
			notes[j] = &models.Note{
				Path:      fmt.Sprintf("c%d/n%d.md", i, j),
				Title:     fmt.Sprintf("Note %d-%d", i, j),
				Body:      strings.Repeat("x", 600),
				WordCount: 100,
			}
		}
		out[i] = cluster.TopicCluster{
			Name:           fmt.Sprintf("topic%d", i),
			Notes:          notes,
			TotalWords:     600,
			Tags:           []string{fmt.Sprintf("topic%d", i), "shared"},
			RecentActivity: i%2 == 0,
			SeedSize:       6,
		}
	}
	return out
}

func TestOutline(t *testing.T) {
	c := sampleClusters(1)[0]
	c.Notes = c.Notes[:2]
	got, err := Outline{}.Summarize(context.Background(), []cluster.TopicCluster{c})
	if err != nil {
		t.Fatal(err)
	}
	want := "topic0: 2 notes, 600 words\n  - Note 0-0\n  - Note 0-1\n"
	if got != want {
		t.Errorf("outline = %q, want %q", got, want)
	}

	empty, _ := Outline{}.Summarize(context.Background(), nil)
	if empty != NoClustersMessage {
		t.Errorf("empty outline = %q", empty)
	}
}

func TestBuildPrompt_Limits(t *testing.T) {
	p := BuildPrompt(sampleClusters(12))

	if !strings.Contains(p, `Cluster 10: "topic9"`) {
		t.Error("tenth cluster missing")
	}
	if strings.Contains(p, "topic10") || strings.Contains(p, "Cluster 11") {
		t.Error("prompt should stop at ten clusters")
	}
	if strings.Contains(p, "Note 0-5") {
		t.Error("prompt should list at most five notes per cluster")
	}
	if !strings.Contains(p, "- Notes: 6 (Note 0-0, Note 0-1, Note 0-2, Note 0-3, Note 0-4)") {
		t.Error("note count line should report the full member count")
	}
	if !strings.Contains(p, "  - Note 0-0: "+strings.Repeat("x", 200)+"...\n") {
		t.Error("excerpt should be cut to 200 characters")
	}
	if !strings.Contains(p, "- Recent activity: Yes") || !strings.Contains(p, "- Recent activity: No") {
		t.Error("recent activity flag missing")
	}
	if !strings.Contains(p, "blog-ready") {
		t.Error("rubric missing")
	}
}

func TestNewClaude_RequiresKey(t *testing.T) {
	_, err := NewClaude(ClaudeConfig{})
	if !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestClaude_Summarize(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("api key header = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("version header = %q", r.Header.Get("anthropic-version"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Write about topic0."}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c, err := NewClaude(ClaudeConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Summarize(context.Background(), sampleClusters(1))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "Write about topic0." {
		t.Errorf("out = %q", out)
	}
	if got.Model != DefaultModel || got.MaxTokens != DefaultMaxTokens {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || !strings.Contains(got.Messages[0].Content, "topic0") {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestClaude_EmptyClustersSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c, _ := NewClaude(ClaudeConfig{APIKey: "k", BaseURL: srv.URL})
	out, err := c.Summarize(context.Background(), nil)
	if err != nil || out != NoClustersMessage {
		t.Errorf("out = %q, err = %v", out, err)
	}
	if calls.Load() != 0 {
		t.Error("no request expected for empty cluster list")
	}
}

func TestClaude_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c, _ := NewClaude(ClaudeConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), sampleClusters(1))
	if err == nil || !strings.Contains(err.Error(), "slow down") || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v", err)
	}
}

func TestWriteGitHubOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(path, []byte("existing=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteGitHubOutput(path, "analysis", "100% ready\nline two\r"); err != nil {
		t.Fatalf("WriteGitHubOutput: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "existing=1\nanalysis=100%25 ready%0Aline two%0D\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}
