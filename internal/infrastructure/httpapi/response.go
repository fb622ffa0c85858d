package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

const (
	codeInvalidJSON     = "invalid_json"
	codeValidation      = "validation_error"
	codeInvalidDate     = "invalid_date"
	codeInvalidInput    = "invalid_input"
	codeBulkLimit       = "bulk_limit_exceeded"
	codeTypeNotFound    = "qualification_type_not_found"
	codeDuplicate       = "duplicate_qualification"
	codeStale           = "stale_qualification"
	codeNotFound        = "not_found"
	codeInternal        = "internal_error"
	msgInternalError    = "internal server error"
	statusSuccessMarker = "success"
	statusErrorMarker   = "error"
)

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status": statusSuccessMarker,
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code string, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  statusErrorMarker,
		Code:    code,
		Message: message,
	})
}

// mapError turns service errors into a status, a stable code and a client message.
func mapError(err error) (int, string, string) {
	switch {
	case domain.IsInvalidDate(err):
		return http.StatusBadRequest, codeInvalidDate, err.Error()
	case domain.IsLimit(err):
		return http.StatusBadRequest, codeBulkLimit, err.Error()
	case errors.Is(err, domain.ErrQualificationTypeNotFound):
		return http.StatusBadRequest, codeTypeNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, codeInvalidInput, err.Error()
	case errors.Is(err, domain.ErrDuplicateQualification):
		return http.StatusConflict, codeDuplicate, err.Error()
	case errors.Is(err, domain.ErrStaleQualification):
		return http.StatusConflict, codeStale, err.Error()
	}

	switch code := errs.Code(err); code {
	case codeInvalidJSON, codeValidation:
		return http.StatusBadRequest, code, err.Error()
	case codeNotFound:
		return http.StatusNotFound, code, err.Error()
	}
	return http.StatusInternalServerError, codeInternal, msgInternalError
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, message := mapError(err)
	logCtx := logging.WithAttrs(ctx,
		slog.String("operation", operation),
		slog.Int("status", status),
		slog.String("code", code),
	)
	if status >= http.StatusInternalServerError {
		logging.Error(logCtx, "request failed", slog.Any("err", errs.Loggable(errs.WithStack(err))))
	} else {
		logging.Info(logCtx, "request rejected", slog.String("reason", message))
	}
	writeError(w, status, code, message)
}
