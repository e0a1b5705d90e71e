package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput) (string, *domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Signin(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*domain.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, actor *domain.User) (*service.Profile, error) {
	args := m.Called(ctx, actor)
	out, _ := args.Get(0).(*service.Profile)
	return out, args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, actor *domain.User, in service.UpdateProfileInput) (*service.Profile, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.Profile)
	return out, args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, actor *domain.User, in service.ChangePasswordInput) error {
	return m.Called(ctx, actor, in).Error(0)
}

func (m *MockAuthService) DeleteAccount(ctx context.Context, actor *domain.User) error {
	return m.Called(ctx, actor).Error(0)
}

type MockMemberService struct{ mock.Mock }

func (m *MockMemberService) EnrollMember(ctx context.Context, actor *domain.User, in service.EnrollMemberInput) (*service.MemberWithPlan, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.MemberWithPlan)
	return out, args.Error(1)
}

func (m *MockMemberService) RenewMember(ctx context.Context, actor *domain.User, in service.RenewMemberInput) (*service.RenewalResult, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.RenewalResult)
	return out, args.Error(1)
}

func (m *MockMemberService) RecordDuePayment(ctx context.Context, actor *domain.User, in service.DuePaymentInput) (*service.MemberWithPlan, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.MemberWithPlan)
	return out, args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context, actor *domain.User, in service.ListMembersInput) (*service.MemberPage, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.MemberPage)
	return out, args.Error(1)
}

func (m *MockMemberService) GetMember(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*service.MemberWithPlan, error) {
	args := m.Called(ctx, actor, id)
	out, _ := args.Get(0).(*service.MemberWithPlan)
	return out, args.Error(1)
}

func (m *MockMemberService) UpdateMember(ctx context.Context, actor *domain.User, in service.UpdateMemberInput) (*service.MemberWithPlan, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.MemberWithPlan)
	return out, args.Error(1)
}

func (m *MockMemberService) DeleteMember(ctx context.Context, actor *domain.User, id primitive.ObjectID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockMemberService) MembershipHistory(ctx context.Context, actor *domain.User, id primitive.ObjectID) ([]domain.MembershipHistory, error) {
	args := m.Called(ctx, actor, id)
	out, _ := args.Get(0).([]domain.MembershipHistory)
	return out, args.Error(1)
}

func (m *MockMemberService) PhotoUploadURL(ctx context.Context, actor *domain.User, id primitive.ObjectID, contentType string) (*service.PhotoUpload, error) {
	args := m.Called(ctx, actor, id, contentType)
	out, _ := args.Get(0).(*service.PhotoUpload)
	return out, args.Error(1)
}

type MockAnalyticsService struct{ mock.Mock }

func (m *MockAnalyticsService) ComputeDashboard(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*service.Dashboard, error) {
	args := m.Called(ctx, actor, gymID)
	out, _ := args.Get(0).(*service.Dashboard)
	return out, args.Error(1)
}

type MockTransactionService struct{ mock.Mock }

func (m *MockTransactionService) ListTransactions(ctx context.Context, actor *domain.User, in service.ListTransactionsInput) (*service.TransactionPage, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*service.TransactionPage)
	return out, args.Error(1)
}

// --- helpers ---

func testOwner() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Owner", Email: "owner@example.com", Role: domain.RoleOwner, IsActive: true}
}

// withActor stands in for AuthMiddleware.
func withActor(actor *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserKey, actor)
		c.Set(ContextUserIDKey, actor.ID.Hex())
		c.Set(ContextUserRoleKey, actor.Role)
		c.Next()
	}
}

func doRequest(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
