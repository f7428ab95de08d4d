package chi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecdash/internal/domain/report"
	"github.com/kailas-cloud/vecdash/internal/domain/search/request"
	"github.com/kailas-cloud/vecdash/internal/logger"
)

const (
	layoutTabs   = "tabs"
	layoutSingle = "single"

	maxFormBytes = 1 << 16
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").
	Funcs(template.FuncMap{"score": formatScore}).
	ParseFS(templatesFS, "templates/dashboard.html"))

// pageData is the view model of the dashboard page.
type pageData struct {
	Title     string
	Layout    string
	Prompt    string
	Searched  bool
	Error     string
	RequestID string
	Report    report.Report
}

// Dashboard handles GET /. A non-empty ?prompt= runs the search, so results are linkable.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	s.renderSearch(w, r, r.URL.Query().Get("prompt"))
}

// DashboardSearch handles POST / with form field "prompt".
func (s *Server) DashboardSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, s.newPage(r, ""), "invalid form submission")
		return
	}
	s.renderSearch(w, r, r.PostForm.Get("prompt"))
}

// renderSearch runs the query when the prompt is non-blank; a blank prompt just shows the form.
// Failures are rendered on the page rather than as a bare error response.
func (s *Server) renderSearch(w http.ResponseWriter, r *http.Request, prompt string) {
	page := s.newPage(r, prompt)
	if strings.TrimSpace(prompt) == "" {
		s.render(w, r, http.StatusOK, page, "")
		return
	}

	req, err := request.NewWithLimits(prompt, 0, 0, s.opts.Limits)
	if err != nil {
		s.renderError(w, r, page, err)
		return
	}

	rep, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.renderError(w, r, page, err)
		return
	}

	page.Searched = true
	page.Report = rep
	s.render(w, r, http.StatusOK, page, "")
}

func (s *Server) newPage(r *http.Request, prompt string) pageData {
	return pageData{
		Title:     s.opts.Title,
		Layout:    s.opts.Layout,
		Prompt:    prompt,
		RequestID: chiMiddleware.GetReqID(r.Context()),
		Report:    report.Empty(),
	}
}

// renderError shows the full error message in the banner; the status still
// comes from the sentinel classification.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, page pageData, err error) {
	status, _, _ := classifyError(err)
	log := logger.FromContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		log.Error("dashboard search failed", zap.Error(err))
	} else {
		log.Warn("dashboard search rejected", zap.Error(err))
	}
	s.render(w, r, status, page, err.Error())
}

// render executes the template into a buffer first so a template failure never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page pageData, errMsg string) {
	page.Error = errMsg

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, page); err != nil {
		logger.FromContext(r.Context(), s.logger).Error("render dashboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
