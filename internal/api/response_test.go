package api

import (
	"fmt"
	"net/http"
	"testing"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Fields: map[string]string{"name": "is required"}}, http.StatusBadRequest},
		{membership.ErrInvalidPricing, http.StatusBadRequest},
		{service.ErrDuplicateMemberID, http.StatusBadRequest},
		{service.ErrPaymentVerificationFailed, http.StatusBadRequest},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{service.ErrAccessDenied, http.StatusForbidden},
		{service.ErrOwnerOnly, http.StatusForbidden},
		{errors.Wrap(service.ErrPlanLimitReached, "members"), http.StatusForbidden},
		{service.ErrGymNotFound, http.StatusNotFound},
		{fmt.Errorf("renew: %w", service.ErrMemberNotFound), http.StatusNotFound},
		{service.ErrUserAlreadyExists, http.StatusConflict},
		{service.ErrOutstandingDue, http.StatusConflict},
		{service.ErrPaymentAlreadyApplied, http.StatusConflict},
		{service.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}

func errorRouter(err error) *gin.Engine {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, err) })
	return r
}

func TestRespondError_Validation(t *testing.T) {
	err := &service.ValidationError{Fields: map[string]string{"phoneNumber": "must be numeric"}}
	w := doRequest(t, errorRouter(err), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]any{"phoneNumber": "must be numeric"}, body["errors"])
}

func TestRespondError_UnexpectedIsOpaque(t *testing.T) {
	w := doRequest(t, errorRouter(errors.New("mongo: socket closed")), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "An unexpected error occurred", body["message"])
	assert.NotContains(t, w.Body.String(), "socket")
}

func TestRespondError_PartialWrite(t *testing.T) {
	member := &domain.Member{ID: primitive.NewObjectID(), MemberID: "GYM001", Name: "Asha"}
	tests := []struct {
		op      service.WriteOperation
		step    service.WriteStep
		message string
	}{
		{service.OpEnrollment, service.StepTransaction, "enrollment is incomplete"},
		{service.OpRenewal, service.StepHistory, "Membership was renewed"},
		{service.OpDuePayment, service.StepMember, "do not collect it again"},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			err := errors.Wrap(&service.PartialWriteError{Op: tt.op, Member: member, Step: tt.step, Err: errors.New("write failed")}, "outer")
			w := doRequest(t, errorRouter(err), http.MethodGet, "/", nil)

			assert.Equal(t, http.StatusMultiStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, string(tt.op), body["operation"])
			assert.Equal(t, string(tt.step), body["failedStep"])
			assert.Contains(t, body["message"], tt.message)
			assert.Equal(t, "GYM001", body["member"].(map[string]any)["memberId"])
		})
	}
}

func TestRespond_Envelope(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respond(c, http.StatusOK, "", gin.H{"count": 2}) })
	w := doRequest(t, r, http.MethodGet, "/", nil)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "message")
	assert.Equal(t, float64(2), body["count"])
}
