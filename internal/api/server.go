package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"postmortem-analysis/internal/analysis"
	"postmortem-analysis/internal/models"
	"postmortem-analysis/internal/telemetry"
)

// Server wires the HTTP surface: submit, poll, health and metrics.
type Server struct {
	svc      *analysis.Service
	validate *validator.Validate
	log      *slog.Logger
}

func New(svc *analysis.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	v := validator.New()
	// "required" alone accepts whitespace-only strings.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Server{svc: svc, validate: v, log: log}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api/analysis", func(r chi.Router) {
		r.Post("/jobs", s.handleSubmit)
		r.Get("/jobs/{jobID}", s.handleGetJob)
	})
	return r
}

type submitResponse struct {
	JobID   uuid.UUID        `json:"jobId"`
	Status  models.JobStatus `json:"status"`
	Message string           `json:"message"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var snapshot models.IncidentSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	if err := s.validate.Struct(snapshot); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	snapshot.Severity = models.NormalizeSeverity(snapshot.Severity)

	jobID := s.svc.Submit(snapshot)
	writeJSON(w, http.StatusAccepted, submitResponse{
		JobID:   jobID,
		Status:  models.StatusQueued,
		Message: fmt.Sprintf("analysis job queued; poll /api/analysis/jobs/%s for results", jobID),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "job id must be a uuid")
		return
	}

	result, ok := s.svc.Result(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	active, total := s.svc.Health()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"activeJobs": active,
		"totalJobs":  total,
	})
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return "invalid request payload"
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
