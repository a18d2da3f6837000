package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
	"github.com/kirillkom/legal-assistant/internal/observability/metrics"
)

const (
	// multipartOverhead is allowed on top of the upload cap for boundaries and headers.
	multipartOverhead = 1 << 20
	maxJSONBodyBytes  = 1 << 20
)

// Services groups the inbound ports the router dispatches to.
type Services struct {
	Ingestor  ports.DocumentIngestor
	Documents ports.DocumentReader
	Analysis  ports.AnalysisService
	Questions ports.QuestionService
	Feedback  ports.FeedbackService
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(cfg config.Config, svc Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:     cfg,
		svc:     svc,
		metrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	api.HandleFunc("GET /v1/documents/{id}/analysis", rt.getAnalysis)
	api.HandleFunc("POST /v1/documents/{id}/questions", rt.askDocument)
	api.HandleFunc("GET /v1/documents/{id}/history", rt.getHistory)
	api.HandleFunc("DELETE /v1/documents/{id}/history", rt.clearHistory)
	api.HandleFunc("POST /v1/analyze", rt.analyzeText)
	api.HandleFunc("POST /v1/questions", rt.askText)
	api.HandleFunc("GET /v1/questions/suggested", rt.suggestedQuestions)
	api.HandleFunc("POST /v1/feedback", rt.submitFeedback)
	api.HandleFunc("GET /v1/feedback", rt.listFeedback)
	api.HandleFunc("GET /v1/feedback/stats", rt.feedbackStats)
	api.HandleFunc("GET /v1/feedback/suggestions", rt.feedbackSuggestions)
	api.HandleFunc("GET /v1/feedback/export", rt.exportFeedback)

	var limited http.Handler = api
	limited = backpressureMiddleware(limited, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	limited = rateLimitMiddleware(limited, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/v1/", limited)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("legal-api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes()+multipartOverhead)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			rt.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	doc, err := rt.svc.Ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := rt.svc.Analysis.GetAnalysis(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type questionRequest struct {
	Text         string `json:"text"`
	Question     string `json:"question"`
	Jurisdiction string `json:"jurisdiction"`
}

func (rt *Router) askDocument(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req, maxJSONBodyBytes) {
		return
	}
	result, err := rt.svc.Questions.Ask(r.Context(), r.PathValue("id"), req.Question, req.Jurisdiction)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) askText(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req, rt.textBodyLimit()) {
		return
	}
	result, err := rt.svc.Questions.AskText(r.Context(), req.Text, req.Question, req.Jurisdiction)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	items, err := rt.svc.Questions.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": r.PathValue("id"), "history": items})
}

func (rt *Router) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Questions.ClearHistory(r.Context(), r.PathValue("id")); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) suggestedQuestions(w http.ResponseWriter, r *http.Request) {
	questions := rt.svc.Questions.SuggestedQuestions(r.URL.Query().Get("jurisdiction"))
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (rt *Router) analyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req, rt.textBodyLimit()) {
		return
	}
	analysis, err := rt.svc.Analysis.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (rt *Router) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var fb domain.Feedback
	if !decodeJSON(w, r, &fb, maxJSONBodyBytes) {
		return
	}
	saved, err := rt.svc.Feedback.Submit(r.Context(), fb)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (rt *Router) listFeedback(w http.ResponseWriter, r *http.Request) {
	minRating, err := queryInt(r, "min_rating")
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	items, err := rt.svc.Feedback.List(r.Context(), domain.FeedbackFilter{
		Feature:   domain.FeedbackFeature(r.URL.Query().Get("feature")),
		MinRating: minRating,
		Limit:     limit,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": items})
}

func (rt *Router) feedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Feedback.Stats(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) feedbackSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := rt.svc.Feedback.ImprovementSuggestions(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (rt *Router) exportFeedback(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	var buf bytes.Buffer
	if err := rt.svc.Feedback.Export(r.Context(), format, &buf); err != nil {
		rt.writeError(w, r, err)
		return
	}

	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="feedback.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// textBodyLimit bounds JSON bodies that carry a document; MAX_TEXT_CHARS runes
// take at most four bytes each.
func (rt *Router) textBodyLimit() int64 {
	limit := int64(rt.cfg.MaxTextChars)*4 + maxJSONBodyBytes
	return max(limit, maxJSONBodyBytes)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return false
		}
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorBody("request body is required"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse query", fmt.Errorf("%s must be a non-negative integer", key))
	}
	return n, nil
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
