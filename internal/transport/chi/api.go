package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	"github.com/kailas-cloud/vecdash/internal/logger"
)

const maxAPIBodyBytes = 1 << 16

// SearchRequest is the JSON body of POST /api/v1/search.
type SearchRequest struct {
	Query         string `json:"query"`
	NumCandidates int    `json:"num_candidates,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// SearchAPI handles POST /api/v1/search and returns both tables as JSON.
func (s *Server) SearchAPI(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	req, err := request.NewWithLimits(body.Query, body.NumCandidates, body.Limit, s.opts.Limits)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleAPIError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classifyError(err)
	log := logger.FromContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		log.Error("search request failed", zap.Error(err))
	} else {
		log.Warn("search request rejected", zap.Error(err))
	}
	writeError(w, status, code, msg)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage == nil {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	w.Header().Set("X-Embedding-Cached", strconv.FormatBool(usage.Cached))
}
