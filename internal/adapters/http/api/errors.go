package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/sfscore/internal/adapters/odata"
	service "github.com/okian/sfscore/internal/app"
	"github.com/okian/sfscore/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error codes of the JSON error body.
const (
	codeValidation     = "validation_error"
	codeNotFound       = "not_found"
	codeMethod         = "method_not_allowed"
	codeUpstreamFormat = "upstream_format_error"
	codeUpstream       = "upstream_error"
	codeInternal       = "internal_error"
)

// requestError is a malformed inbound request; its message goes to the caller.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return ErrBadRequest }

func badRequest(msg string) error { return &requestError{msg: msg} }

// writeFailure maps a handler error onto the error body.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	var (
		fe *odata.FormatError
		se *odata.StatusError
	)
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	case errors.As(err, &fe):
		log.Warn(ctx, "upstream returned non-JSON",
			logger.String("op", op),
			logger.Int("status", fe.Status),
			logger.String("content_type", fe.ContentType),
		)
		preview := fe.Preview
		writeJSON(w, fe.HTTPStatus(), errorResponse{
			Code:        codeUpstreamFormat,
			Message:     "upstream returned a non-JSON response",
			Status:      fe.HTTPStatus(),
			ContentType: fe.ContentType,
			BodyPreview: &preview,
		})
	case errors.As(err, &se):
		log.Warn(ctx, "upstream request failed",
			logger.String("op", op),
			logger.Int("status", se.Status),
		)
		writeJSON(w, se.Status, errorResponse{
			Code:    codeUpstream,
			Message: "upstream request failed",
			Status:  se.Status,
			Details: se.Details(),
		})
	default:
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, err)
	}
}
