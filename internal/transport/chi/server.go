package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/logger"
	batchuc "github.com/kailas-cloud/matchmaker/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	profileuc "github.com/kailas-cloud/matchmaker/internal/usecase/profile"
	usageuc "github.com/kailas-cloud/matchmaker/internal/usecase/usage"
)

// Request body caps.
const (
	maxBodyBytes      = 64 << 10
	maxBatchBodyBytes = 1 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// domainErrors maps sentinel errors to responses. The first match wins.
var domainErrors = []struct {
	err    error
	status int
	code   ErrorCode
}{
	{domain.ErrUserNotFound, http.StatusNotFound, ErrorCodeUserNotFound},
	{domain.ErrInvalidProfile, http.StatusBadRequest, ErrorCodeValidationFailed},
	{domain.ErrInvalidPreferences, http.StatusBadRequest, ErrorCodeInvalidPreferences},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable},
	{domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, ErrorCodeQuotaExceeded},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProvider},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeTimeout},
}

// Server serves the matchmaker HTTP API.
type Server struct {
	profiles      *profileuc.Service
	matching      *matchinguc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	batch         *batchuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	profiles *profileuc.Service,
	matching *matchinguc.Service,
	health *healthuc.Service,
	usage *usageuc.Service,
	batch *batchuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		profiles: profiles,
		matching: matching,
		health:   health,
		usage:    usage,
		batch:    batch,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, m := range domainErrors {
		s.errorHandlers = append(s.errorHandlers, sentinelHandler(m.err, m.status, m.code))
	}
	return s
}

// ComputeMatches handles GET /api/v1/users/{id}/matches.
func (s *Server) ComputeMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ranking, err := s.matching.ComputeMatches(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingToResponse(id, ranking))
}

// UpsertUser handles PUT /api/v1/users/{id}.
func (s *Server) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req UpsertUserRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, created, err := s.profiles.Upsert(r.Context(), req.toInput(chi.URLParam(r, "id")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, userToResponse(&p))
}

// GetUser handles GET /api/v1/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(&p))
}

// DeleteUser handles DELETE /api/v1/users/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /api/v1/users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	ps, err := s.profiles.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]UserResponse, len(ps))
	for i := range ps {
		items[i] = userToResponse(&ps[i])
	}
	writeJSON(w, http.StatusOK, UserListResponse{Items: items, Count: len(items)})
}

// UpdatePreferences handles PUT /api/v1/users/{id}/preferences.
func (s *Server) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, err := s.profiles.UpdatePreferences(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(&p))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}

// BatchUpsertUsers handles POST /api/v1/users/batch.
func (s *Server) BatchUpsertUsers(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if !s.decodeLimit(w, r, &req, maxBatchBodyBytes) {
		return
	}
	inputs := make([]profileuc.Input, len(req.Items))
	for i := range req.Items {
		inputs[i] = req.Items[i].toInput(req.Items[i].ID)
	}
	s.writeBatch(w, r, s.batch.Upsert(r.Context(), inputs), "upserted")
}

// BatchDeleteUsers handles POST /api/v1/users/batch/delete.
func (s *Server) BatchDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if !s.decodeLimit(w, r, &req, maxBatchBodyBytes) {
		return
	}
	s.writeBatch(w, r, s.batch.Delete(r.Context(), req.IDs), "deleted")
}

func (s *Server) writeBatch(w http.ResponseWriter, r *http.Request, results []batchuc.Result, okStatus string) {
	log := logger.FromContextOr(r.Context(), s.logger)
	resp := BatchResponse{Items: make([]BatchItemResult, len(results))}
	for i, res := range results {
		item := BatchItemResult{ID: res.ID, Status: okStatus}
		switch {
		case res.Err != nil:
			item.Status = "error"
			item.Error = &ErrorResponse{Code: errorCode(res.Err), Message: safeDomainMessage(res.Err)}
			resp.Failed++
			log.Warn("batch item failed", zap.String("id", res.ID), zap.Error(res.Err))
		case res.Created:
			item.Status = "created"
			resp.Succeeded++
		default:
			resp.Succeeded++
		}
		resp.Items[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /api/v1/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.usage.GetReport(r.Context(), period)))
}

// decode reads and validates a JSON body. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return s.decodeLimit(w, r, dst, maxBodyBytes)
}

func (s *Server) decodeLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// validationMessage names the first failing field without echoing values.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "field " + fe.Field() + " failed " + fe.Tag() + " validation"
	}
	return "invalid request"
}

// safeDomainMessage returns the matched error text for the client.
// Domain validation messages are safe to show; everything else is generic.
func safeDomainMessage(err error) string {
	for _, v := range []error{domain.ErrInvalidProfile, domain.ErrInvalidPreferences} {
		if errors.Is(err, v) {
			return validationDetail(err, v)
		}
	}
	sentinels := []error{
		domain.ErrUserNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// validationDetail strips the usecase wrapping ("validate profile: ") so the
// client sees "invalid profile: age must be ...".
func validationDetail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// errorCode returns the code of the first matching sentinel.
func errorCode(err error) ErrorCode {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return ErrorCodeInternalError
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
