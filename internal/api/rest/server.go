// Package rest wraps jobtracker.Tracker's in-process API in an HTTP surface,
// the way the teacher's internal/coordinator/api/rest wraps its JobService:
// JSON DTOs, a mapper between wire and domain types, and logging/recovery
// middleware chained in front of the handlers. The core API itself has no
// HTTP dependency.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/distmr/tracker/internal/jobtracker"
	"github.com/distmr/tracker/internal/shared/logging"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

type API struct {
	tracker *jobtracker.Tracker
}

func NewAPI(tracker *jobtracker.Tracker) *API {
	return &API{tracker: tracker}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/jobs", a.submitJob)
	mux.HandleFunc("GET /api/jobs/{id}", a.getJob)
}

func (a *API) submitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.InputPaths) == 0 {
		a.respondError(w, http.StatusBadRequest, "validation failed", "input_paths is required")
		return
	}

	id := a.tracker.NewJobId()
	if _, err := a.tracker.Submit(id, req.ToJobInfo()); err != nil {
		if errors.Is(err, jobtracker.ErrShutdown) {
			a.respondError(w, http.StatusServiceUnavailable, "tracker is shutting down", "")
			return
		}
		a.respondError(w, http.StatusInternalServerError, "submission failed", err.Error())
		return
	}

	a.respondJSON(w, http.StatusCreated, SubmitJobResponse{
		JobID:       id.String(),
		Status:      jobtracker.PhaseMap.String(),
		SubmittedAt: time.Now().UTC(),
		Links:       Links{Self: "/api/jobs/" + id.String()},
	})
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := jobtracker.ParseJobId(r.PathValue("id"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid job id", err.Error())
		return
	}

	ch, info, phase, err := a.tracker.Status(jobID)
	if err != nil {
		if errors.Is(err, jobtracker.ErrJobNotFound) {
			a.respondError(w, http.StatusNotFound, "job not found", "")
			return
		}
		a.respondError(w, http.StatusInternalServerError, "status lookup failed", err.Error())
		return
	}

	var outcome *jobtracker.Outcome
	if phase == jobtracker.PhaseComplete {
		select {
		case out := <-ch:
			outcome = &out
		default:
		}
	}

	a.respondJSON(w, http.StatusOK, toGetJobResponse(jobID, *info, phase, outcome))
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, errMsg, message string) {
	a.respondJSON(w, statusCode, ErrorResponse{Error: errMsg, Message: message, Code: statusCode})
}

// NewServer builds the HTTP surface for tracker: routes chained behind
// recovery and logging middleware, the way the teacher's rest.NewServer
// wires its API.
func NewServer(addr string, tracker *jobtracker.Tracker, logger logging.Logger) *http.Server {
	api := NewAPI(tracker)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
