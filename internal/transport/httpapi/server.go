// Package httpapi exposes the shelf over HTTP for the serve subcommand.
// The CLI remains the primary front end; this API mirrors its operations
// one-for-one so other tools can drive the same data directory.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfmate/shelfmate/internal/domain"
	"github.com/shelfmate/shelfmate/internal/metrics"
	lookupuc "github.com/shelfmate/shelfmate/internal/usecase/lookup"
	readsuc "github.com/shelfmate/shelfmate/internal/usecase/reads"
	recommenduc "github.com/shelfmate/shelfmate/internal/usecase/recommend"
)

const dateLayout = "2006-01-02"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	reads         *readsuc.Service
	recommend     *recommenduc.Service
	lookup        *lookupuc.Service
	db            *sql.DB
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	reads *readsuc.Service,
	recommend *recommenduc.Service,
	lookup *lookupuc.Service,
	db *sql.DB,
	logger *zap.Logger,
) *Server {
	s := &Server{
		reads:     reads,
		recommend: recommend,
		lookup:    lookup,
		db:        db,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		duplicateReadHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrInvalidRating, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrNotConfigured, http.StatusServiceUnavailable, "not_configured"),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, "generation_provider_error"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding_provider_error"),
	}
	return s
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.healthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/reads", s.listReads)
		r.Post("/reads", s.logRead)
		r.Get("/reads/{id}", s.getRead)
		r.Get("/books/search", s.searchBooks)
		r.Get("/sessions", s.listSessions)
		r.Get("/sessions/{id}", s.getSession)
		r.Post("/recommendations", s.createRecommendation)
	})

	return r
}

type logReadRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn,omitempty"`
	Status     string `json:"status,omitempty"`
	Rating     int    `json:"rating,omitempty"`
	Review     string `json:"review,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
}

type readResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn,omitempty"`
	Status     string `json:"status"`
	Rating     int    `json:"rating"`
	Review     string `json:"review,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type recommendRequest struct {
	Mood      string `json:"mood"`
	Direction string `json:"direction,omitempty"`
}

type recommendationResponse struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
	Match  string `json:"match"`
}

type sessionResponse struct {
	ID              string                   `json:"id"`
	Mood            string                   `json:"mood"`
	Direction       string                   `json:"direction"`
	Recommendations []recommendationResponse `json:"recommendations"`
	CreatedAt       string                   `json:"created_at"`
}

type bookResponse struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          string   `json:"isbn,omitempty"`
	Description   string   `json:"description,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	AverageRating float64  `json:"average_rating,omitempty"`
	RatingsCount  int      `json:"ratings_count,omitempty"`
	Source        string   `json:"source"`
	InfoURL       string   `json:"info_url,omitempty"`
}

func (s *Server) logRead(w http.ResponseWriter, r *http.Request) {
	var req logReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Title == "" || req.Author == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "title and author are required")
		return
	}

	params := domain.ReadParams{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Rating: req.Rating,
		Review: req.Review,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		params.Status = status
	}
	var err error
	if params.StartedAt, err = parseDate(req.StartedAt); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "started_at: "+err.Error())
		return
	}
	if params.FinishedAt, err = parseDate(req.FinishedAt); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "finished_at: "+err.Error())
		return
	}

	read, err := s.reads.Log(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, readToResponse(read))
}

func (s *Server) listReads(w http.ResponseWriter, r *http.Request) {
	var f domain.ReadFilter
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		f.Status = status
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "min_rating must be an integer")
			return
		}
		f.MinRating = n
	}

	reads, err := s.reads.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]readResponse, len(reads))
	for i, read := range reads {
		items[i] = readToResponse(read)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) getRead(w http.ResponseWriter, r *http.Request) {
	read, err := s.reads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readToResponse(read))
}

func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query parameter q is required")
		return
	}
	maxResults := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "limit must be an integer")
			return
		}
		maxResults = n
	}

	results := s.lookup.Search(r.Context(), query, maxResults)
	items := make([]bookResponse, len(results))
	for i, b := range results {
		items[i] = bookResponse{
			Title:         b.Title,
			Author:        b.Author,
			ISBN:          b.ISBN,
			Description:   b.Description,
			PublishedDate: b.PublishedDate,
			PageCount:     b.PageCount,
			Categories:    b.Categories,
			AverageRating: b.AverageRating,
			RatingsCount:  b.RatingsCount,
			Source:        b.Source,
			InfoURL:       b.InfoURL,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) createRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Mood == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "mood is required")
		return
	}
	direction := domain.DirectionBalance
	if req.Direction != "" {
		var err error
		if direction, err = domain.ParseDirection(req.Direction); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
	}

	session, err := s.recommend.Recommend(r.Context(), req.Mood, direction)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionToResponse(session))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.recommend.Sessions(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]sessionResponse, len(sessions))
	for i, sess := range sessions {
		items[i] = sessionToResponse(sess)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.recommend.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readToResponse(read domain.Read) readResponse {
	resp := readResponse{
		ID:        read.ID,
		Title:     read.Title,
		Author:    read.Author,
		ISBN:      read.ISBN,
		Status:    string(read.Status),
		Rating:    read.Rating,
		Review:    read.Review,
		CreatedAt: read.CreatedAt.Format(time.RFC3339),
	}
	if read.StartedAt != nil {
		resp.StartedAt = read.StartedAt.Format(dateLayout)
	}
	if read.FinishedAt != nil {
		resp.FinishedAt = read.FinishedAt.Format(dateLayout)
	}
	return resp
}

func sessionToResponse(s domain.RecommendationSession) sessionResponse {
	recs := make([]recommendationResponse, len(s.Recommendations))
	for i, rec := range s.Recommendations {
		recs[i] = recommendationResponse{
			Title:  rec.Title,
			Author: rec.Author,
			Reason: rec.Reason,
			Match:  string(rec.Match),
		}
	}
	return sessionResponse{
		ID:              s.ID,
		Mood:            s.Mood,
		Direction:       string(s.Direction),
		Recommendations: recs,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, errors.New("want YYYY-MM-DD")
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler matching a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// duplicateReadHandler surfaces which title/author pair was duplicated.
func duplicateReadHandler(w http.ResponseWriter, err error) bool {
	var dup *domain.DuplicateReadError
	if !errors.As(err, &dup) {
		return false
	}
	writeError(w, http.StatusConflict, "duplicate_read", dup.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
