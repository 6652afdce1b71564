package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/server/http/dto"
	"github.com/polkiloo/rigshop/internal/server/http/middleware"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// Error codes returned in dto.ErrorResponse.
const (
	CodeValidation        = "validation_failed"
	CodeIllegalTransition = "illegal_transition"
	CodePaymentDeclined   = "payment_declined"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeBuildLocked       = "build_locked"
	CodeForbidden         = "forbidden"
	CodeUnauthorized      = "unauthorized"
	CodeTooLarge          = "payload_too_large"
	CodeUpstream          = "upstream_unavailable"
	CodeInternal          = "internal"
)

// CurrentActor builds the caller identity from authenticated claims.
// Requests without claims act as guests.
func CurrentActor(c *gin.Context) usecase.Actor {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return usecase.Actor{}
	}
	return usecase.Actor{UserID: claims.UserID, Role: model.Role(claims.Role)}
}

// ErrorWriter maps domain errors onto HTTP responses.
type ErrorWriter struct {
	logger  *slog.Logger
	verbose bool
}

// NewErrorWriter creates ErrorWriter. Verbose writers expose internal error
// text in the details field.
func NewErrorWriter(logger *slog.Logger, verbose bool) *ErrorWriter {
	return &ErrorWriter{logger: logger, verbose: verbose}
}

// Write aborts the request with the response matching err.
func (w *ErrorWriter) Write(c *gin.Context, err error) {
	var (
		verr     *domainErrors.ValidationError
		declined *domainErrors.PaymentDeclinedError
		upstream *domainErrors.UpstreamError
	)

	status := http.StatusInternalServerError
	body := dto.ErrorResponse{Error: CodeInternal, Message: "internal server error"}

	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = dto.ErrorResponse{Error: CodeValidation, Message: "request validation failed", Fields: verr.Fields}
	case errors.Is(err, domainErrors.ErrIllegalTransition):
		status = http.StatusUnprocessableEntity
		body = dto.ErrorResponse{Error: CodeIllegalTransition, Message: err.Error()}
	case errors.As(err, &declined):
		status = http.StatusPaymentRequired
		body = dto.ErrorResponse{Error: CodePaymentDeclined, Message: declined.Error()}
	case errors.Is(err, domainErrors.ErrNotFound):
		status = http.StatusNotFound
		body = dto.ErrorResponse{Error: CodeNotFound, Message: "resource not found"}
	case errors.Is(err, domainErrors.ErrBuildLocked):
		status = http.StatusConflict
		body = dto.ErrorResponse{Error: CodeBuildLocked, Message: "build was already ordered"}
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		status = http.StatusConflict
		body = dto.ErrorResponse{Error: CodeConflict, Message: "resource already exists"}
	case errors.Is(err, domainErrors.ErrForbidden):
		status = http.StatusForbidden
		body = dto.ErrorResponse{Error: CodeForbidden, Message: "access denied"}
	case errors.Is(err, domainErrors.ErrInvalidCredentials), errors.Is(err, pkgAuth.ErrInvalidToken):
		status = http.StatusUnauthorized
		body = dto.ErrorResponse{Error: CodeUnauthorized, Message: "invalid credentials"}
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
		body = dto.ErrorResponse{Error: CodeUpstream, Message: upstream.Service + " unavailable"}
	}

	if status >= http.StatusInternalServerError {
		w.logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		if w.verbose {
			body.Details = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body and reports malformed payloads.
func (w *ErrorWriter) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error:   CodeTooLarge,
				Message: "request body too large",
			})
			return false
		}
		w.Write(c, domainErrors.NewValidationError("body", "malformed JSON payload"))
		return false
	}
	return true
}
