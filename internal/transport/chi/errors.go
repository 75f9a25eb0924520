package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/annodex-io/annodex/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		forbiddenHandler,
		keyRestrictedHandler,
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidRole, http.StatusUnprocessableEntity, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidPattern, http.StatusUnprocessableEntity, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidContext, http.StatusUnprocessableEntity, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusUnprocessableEntity, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusUnprocessableEntity, CodeValidationFailed),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// forbiddenHandler maps a true permission denial, naming the evaluated
// identity in the body.
func forbiddenHandler(w http.ResponseWriter, err error, _ string) bool {
	var denial *domain.ForbiddenError
	if !errors.As(err, &denial) {
		return false
	}
	writeJSON(w, http.StatusForbidden, ErrorResponse{
		Code:     CodeForbidden,
		Message:  denial.Error(),
		Identity: denial.Identity,
	})
	return true
}

// keyRestrictedHandler maps an API-key-scope denial, naming the key so
// the caller can tell it apart from a true permission denial.
func keyRestrictedHandler(w http.ResponseWriter, err error, _ string) bool {
	var denial *domain.KeyRestrictedError
	if !errors.As(err, &denial) {
		return false
	}
	writeJSON(w, http.StatusForbidden, ErrorResponse{
		Code:    CodeKeyRestricted,
		Message: denial.Error(),
		Key:     denial.KeyName,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage returns err.Error() only for errors whose text is safe
// to expose; storage details stay out of responses.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnauthenticated,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidRole,
		domain.ErrInvalidPattern,
		domain.ErrInvalidContext,
		domain.ErrInvalidRequest,
		domain.ErrInvalidDocument,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}
