package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/samit-dev/wisuda/internal/app"
	"github.com/samit-dev/wisuda/internal/metrics"
	"github.com/samit-dev/wisuda/internal/models"
)

type WisudaHandler struct {
	service *app.Service
}

func NewWisudaHandler(service *app.Service) *WisudaHandler {
	return &WisudaHandler{
		service: service,
	}
}

func observe(r *http.Request, status int, start time.Time) {
	metrics.APIRequestDuration.WithLabelValues(
		r.URL.Path,
		r.Method,
		strconv.Itoa(status),
	).Observe(time.Since(start).Seconds())
}

// requireSession verifies the bearer token and returns the claims, writing
// the 401 itself on failure. Auth always runs before any validation or
// store access.
func (h *WisudaHandler) requireSession(w http.ResponseWriter, r *http.Request) (*app.Claims, bool) {
	token, err := app.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return nil, false
	}

	claims, err := h.service.Auth.VerifyToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return nil, false
	}

	return claims, true
}

type loginRequest struct {
	UUID     string `json:"uuid"`
	Password string `json:"password"`
}

func (h *WisudaHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		observe(r, http.StatusBadRequest, start)
		return
	}

	if req.UUID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "uuid and password are required")
		observe(r, http.StatusBadRequest, start)
		return
	}

	session, err := h.service.Login(r.Context(), req.UUID, req.Password)
	switch {
	case errors.Is(err, app.ErrTooManyLoginAttempts):
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
		observe(r, http.StatusTooManyRequests, start)
		return
	case errors.Is(err, app.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		writeError(w, http.StatusUnauthorized, "Login failed")
		observe(r, http.StatusUnauthorized, start)
		return
	case err != nil:
		logger.Error.Printf("Login failed for %s: %v", req.UUID, err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "Server error")
		observe(r, http.StatusInternalServerError, start)
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, session)
	observe(r, http.StatusOK, start)
}

func (h *WisudaHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	claims, ok := h.requireSession(w, r)
	if !ok {
		observe(r, http.StatusUnauthorized, start)
		return
	}

	record, err := h.service.Status(claims.UUID)
	if err != nil {
		logger.Error.Printf("Failed to fetch status for %s: %v", claims.UUID, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		observe(r, http.StatusInternalServerError, start)
		return
	}

	writeJSON(w, http.StatusOK, record)
	observe(r, http.StatusOK, start)
}

func (h *WisudaHandler) HandleNomination(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	claims, ok := h.requireSession(w, r)
	if !ok {
		observe(r, http.StatusUnauthorized, start)
		return
	}

	var input models.NominationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		observe(r, http.StatusBadRequest, start)
		return
	}

	err := h.service.SubmitNomination(claims.UUID, &input)
	var validationErr *app.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Reason)
		observe(r, http.StatusBadRequest, start)
		return
	case err != nil:
		logger.Error.Printf("Failed to save nomination for %s: %v", claims.UUID, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		observe(r, http.StatusInternalServerError, start)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("nomination").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	observe(r, http.StatusOK, start)
}

func (h *WisudaHandler) HandleDreams(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	claims, ok := h.requireSession(w, r)
	if !ok {
		observe(r, http.StatusUnauthorized, start)
		return
	}

	if err := h.service.MarkDreamsDone(claims.UUID); err != nil {
		logger.Error.Printf("Failed to mark dreams done for %s: %v", claims.UUID, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		observe(r, http.StatusInternalServerError, start)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("dreams").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	observe(r, http.StatusOK, start)
}

// HandleAdminNominations serves the admin results view. It is deliberately
// unauthenticated to match the deployed setup, where the /api/admin/ prefix
// is fenced off at the reverse proxy.
func (h *WisudaHandler) HandleAdminNominations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	details, summary, err := h.service.AggregateNominations()
	if err != nil {
		logger.Error.Printf("Failed to aggregate nominations: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		observe(r, http.StatusInternalServerError, start)
		return
	}

	if details == nil {
		details = []models.NominationDetail{}
	}
	if summary == nil {
		summary = []models.VoteTally{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"nominations": details,
		"summary":     summary,
	})
	observe(r, http.StatusOK, start)
}
