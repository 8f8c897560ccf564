package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ytdigest/digest"
	"ytdigest/errors"
)

// Digester is the pipeline surface the HTTP layer depends on.
type Digester interface {
	Digest(ctx context.Context, req digest.Request) (*digest.Result, error)
}

type Handler struct {
	service        Digester
	requestTimeout time.Duration
	logger         *logrus.Logger
}

func New(service Digester, requestTimeout time.Duration) *Handler {
	return &Handler{
		service:        service,
		requestTimeout: requestTimeout,
		logger:         logrus.StandardLogger(),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/digest", h.Digest).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

func (h *Handler) Digest(w http.ResponseWriter, r *http.Request) {
	var req digest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidIdentifier("handlers.Digest", err, "Invalid JSON request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	result, err := h.service.Digest(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithField("url", req.URL).Error("Digest request failed")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// failurePayload is the structured error surface: a kind plus a short
// human-readable message, no internal detail.
type failurePayload struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	payload := failurePayload{
		Kind:  string(errors.KindInternal),
		Error: "An error occurred while processing your request. Please try again later.",
	}

	if appErr, ok := err.(*errors.AppError); ok {
		code = appErr.Code
		payload.Kind = string(appErr.Kind)
		payload.Error = appErr.Message
	}

	respondJSON(w, code, payload)
}
