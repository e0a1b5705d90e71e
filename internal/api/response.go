package api

import (
	"errors"
	"net/http"

	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respond writes the success envelope {success, message?, ...payload}.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}

// errorStatus classifies a service error. The zero status means the error
// is unexpected.
func errorStatus(err error) int {
	switch {
	case service.IsValidation(err),
		errors.Is(err, service.ErrDuplicateMemberID),
		errors.Is(err, service.ErrPaymentVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrOwnerOnly),
		errors.Is(err, service.ErrPlanLimitReached):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGymNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrManagerNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPaymentAlreadyApplied),
		errors.Is(err, service.ErrOutstandingDue):
		return http.StatusConflict
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

// respondError maps a service error onto the HTTP error envelope.
// Unexpected errors are logged and reported with an opaque message.
func respondError(c *gin.Context, err error) {
	var partial *service.PartialWriteError
	if errors.As(err, &partial) {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("operation", string(partial.Op)).Str("step", string(partial.Step)).Msg("partial write")
		c.AbortWithStatusJSON(http.StatusMultiStatus, gin.H{
			"success":    false,
			"message":    partialWriteMessage(partial),
			"operation":  partial.Op,
			"failedStep": partial.Step,
			"member":     partial.Member,
		})
		return
	}

	status := errorStatus(err)
	if status == 0 {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": "Validation error", "errors": ve.Fields})
		return
	}
	abortWithError(c, status, err.Error())
}

func partialWriteMessage(e *service.PartialWriteError) string {
	switch e.Op {
	case service.OpRenewal:
		return "Membership was renewed but the " + string(e.Step) + " record was not saved and must be re-entered"
	case service.OpDuePayment:
		return "Payment was recorded in the ledger but the member's due was not updated; do not collect it again"
	default:
		return "Member was saved but the enrollment is incomplete; the " + string(e.Step) + " record must be re-entered"
	}
}
