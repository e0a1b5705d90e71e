package service

import (
	"context"
	"io"
	"sync"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/events"
	"alcyxob/gym-manager/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock repositories
type MockUserRepo struct{ mock.Mock }
type MockGymRepo struct{ mock.Mock }
type MockPlanRepo struct{ mock.Mock }
type MockMemberRepo struct{ mock.Mock }
type MockTransactionRepo struct{ mock.Mock }
type MockHistoryRepo struct{ mock.Mock }
type MockSubscriptionRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ListManagersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.User, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) CountActiveManagers(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) AddOwnedGym(ctx context.Context, ownerID, gymID primitive.ObjectID) error {
	return m.Called(ctx, ownerID, gymID).Error(0)
}

func (m *MockUserRepo) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockGymRepo) Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error) {
	args := m.Called(ctx, gym)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockGymRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Gym), args.Error(1)
}

func (m *MockGymRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Gym, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gym), args.Error(1)
}

func (m *MockGymRepo) CountActiveByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGymRepo) AddManager(ctx context.Context, gymIDs []primitive.ObjectID, managerID primitive.ObjectID) error {
	return m.Called(ctx, gymIDs, managerID).Error(0)
}

func (m *MockGymRepo) RemoveManager(ctx context.Context, managerID primitive.ObjectID, exceptGymIDs []primitive.ObjectID) error {
	return m.Called(ctx, managerID, exceptGymIDs).Error(0)
}

func (m *MockGymRepo) SetSubscription(ctx context.Context, gymID primitive.ObjectID, sub domain.GymSubscription) error {
	return m.Called(ctx, gymID, sub).Error(0)
}

func (m *MockPlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *MockPlanRepo) ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Plan, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *MockPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockPlanRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	args := m.Called(ctx, member)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepo) ExistsByMemberID(ctx context.Context, gymID primitive.ObjectID, memberID string) (bool, error) {
	args := m.Called(ctx, gymID, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepo) List(ctx context.Context, filter repository.MemberFilter, page repository.Page) ([]domain.Member, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepo) ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Member, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepo) CountActiveByGym(ctx context.Context, gymID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, gymID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepo) Update(ctx context.Context, member *domain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionRepo) Create(ctx context.Context, txn *domain.Transaction) (primitive.ObjectID, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepo) ListBetween(ctx context.Context, gymID primitive.ObjectID, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, gymID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListRecent(ctx context.Context, gymID primitive.ObjectID, limit int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, gymID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockHistoryRepo) Create(ctx context.Context, entry *domain.MembershipHistory) (primitive.ObjectID, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockHistoryRepo) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MembershipHistory, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MembershipHistory), args.Error(1)
}

func (m *MockSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockSubscriptionRepo) GetLatestByGym(ctx context.Context, gymID primitive.ObjectID) (*domain.Subscription, error) {
	args := m.Called(ctx, gymID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

type MockFileStorage struct{ mock.Mock }

func (m *MockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}

// fakeTx runs the unit of work inline. atomic controls what Atomic reports.
type fakeTx struct {
	atomic bool
	calls  int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func (f *fakeTx) Atomic() bool { return f.atomic }

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Fixtures

func newOwner() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Owner", Role: domain.RoleOwner, IsActive: true}
}

func newManagerUser(assignedBy primitive.ObjectID) *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Manager", Role: domain.RoleManager, IsActive: true, AssignedBy: &assignedBy}
}

func newGym(owner *domain.User, managers ...primitive.ObjectID) *domain.Gym {
	g := &domain.Gym{
		ID:       primitive.NewObjectID(),
		Name:     "Iron Temple",
		Owner:    owner.ID,
		Managers: managers,
		IsActive: true,
		Subscription: domain.GymSubscription{
			Plan:   domain.SaaSPlanPro,
			Status: domain.SubscriptionActive,
		},
	}
	owner.OwnedGyms = append(owner.OwnedGyms, g.ID)
	return g
}

func newPlan(gymID primitive.ObjectID, name string, price int64, d domain.PlanDuration) *domain.Plan {
	return &domain.Plan{
		ID:       primitive.NewObjectID(),
		Gym:      gymID,
		Name:     name,
		Duration: d,
		Price:    domain.NewMoney(price),
		IsActive: true,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
