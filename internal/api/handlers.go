package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/topicscout/internal/topics"
)

const defaultSearchLimit = 20

// Handler holds API route handlers.
type Handler struct {
	svc    Service
	events Events
}

// NewHandler creates a Handler. events may be nil.
func NewHandler(svc Service, events Events) *Handler {
	return &Handler{svc: svc, events: events}
}

// intParam reads an optional non-negative integer query parameter; absent
// yields nil.
func intParam(q url.Values, name string) (*int, bool) {
	raw := q.Get(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

// ListClusters handles GET /clusters.
//
//	@Summary		List topic clusters that pass the size filter
//	@Tags			clusters
//	@Produce		json
//	@Param			min_notes	query		int	false	"Minimum member count"
//	@Param			min_words	query		int	false	"Minimum combined word count"
//	@Success		200			{object}	ClusterListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/clusters [get]
func (h *Handler) ListClusters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minNotes, ok1 := intParam(q, "min_notes")
	minWords, ok2 := intParam(q, "min_words")
	if !ok1 || !ok2 {
		writeJSON(w, http.StatusBadRequest, errorBody("min_notes and min_words must be non-negative integers"))
		return
	}

	effNotes, effWords, err := h.svc.Thresholds(minNotes, minWords)
	if err != nil {
		writeError(w, "list clusters", err)
		return
	}
	clusters, err := h.svc.Clusters(r.Context(), minNotes, minWords)
	if err != nil {
		writeError(w, "list clusters", err)
		return
	}
	writeJSON(w, http.StatusOK, ClusterListResponse{
		Clusters: toClusterList(clusters),
		Total:    len(clusters),
		MinNotes: effNotes,
		MinWords: effWords,
	})
}

// GetCluster handles GET /clusters/{name}.
//
//	@Summary		Get the cluster seeded by a tag, ignoring size filters
//	@Tags			clusters
//	@Produce		json
//	@Param			name	path		string	true	"Seed tag"
//	@Success		200		{object}	ClusterResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/clusters/{name} [get]
func (h *Handler) GetCluster(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("cluster name is required"))
		return
	}
	c, err := h.svc.Cluster(r.Context(), name)
	if err != nil {
		writeError(w, "get cluster", err)
		return
	}
	writeJSON(w, http.StatusOK, toClusterResponse(c))
}

// Analyze handles POST /analyze.
//
//	@Summary		Run a readiness analysis
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnalyzeRequest	false	"Thresholds and side effects"
//	@Success		200		{object}	AnalysisResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analyze [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	a, err := h.svc.Analyze(r.Context(), topics.AnalyzeRequest{
		MinNotes: req.MinNotes,
		MinWords: req.MinWords,
		DryRun:   req.DryRun,
		Notify:   req.Notify,
	})
	if err != nil {
		writeError(w, "analyze", err)
		return
	}
	if h.events != nil {
		h.events.PublishAnalysis(a.ID, len(a.Clusters), a.DryRun)
	}
	writeJSON(w, http.StatusOK, toAnalysisResponse(a))
}

// Search handles GET /search.
//
//	@Summary		Full-text search across indexed notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
