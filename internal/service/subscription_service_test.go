package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestActivateSubscription(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	verifier := payment.NewHMACVerifier("gateway-secret")

	setup := func(gym *domain.Gym) (*subscriptionService, *MockSubscriptionRepo, *MockGymRepo) {
		gyms := new(MockGymRepo)
		subs := new(MockSubscriptionRepo)
		gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
		svc := NewSubscriptionService(NewAccessGate(gyms), subs, gyms, new(MockMemberRepo), verifier, &fakeTx{atomic: true}, testLogger()).(*subscriptionService)
		svc.now = fixedClock(now)
		return svc, subs, gyms
	}
	input := func(gymID primitive.ObjectID) ActivateSubscriptionInput {
		return ActivateSubscriptionInput{
			GymID:        gymID,
			Plan:         domain.SaaSPlanPro,
			BillingCycle: domain.BillingMonthly,
			OrderID:      "order_1",
			PaymentID:    "pay_1",
			Signature:    verifier.Sign("order_1", "pay_1"),
		}
	}

	t.Run("from trial", func(t *testing.T) {
		owner := newOwner()
		gym := newGym(owner)
		gym.Subscription = domain.GymSubscription{Status: domain.SubscriptionTrial}
		svc, subs, gyms := setup(gym)
		subs.On("ExistsByPaymentID", mock.Anything, "pay_1").Return(false, nil)
		subs.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
		gyms.On("SetSubscription", mock.Anything, gym.ID, mock.MatchedBy(func(s domain.GymSubscription) bool {
			return s.Plan == domain.SaaSPlanPro && s.Status == domain.SubscriptionActive
		})).Return(nil)

		sub, err := svc.ActivateSubscription(context.Background(), owner, input(gym.ID))
		require.NoError(t, err)
		assert.Equal(t, now, sub.StartDate)
		assert.Equal(t, now.AddDate(0, 1, 0), sub.EndDate)
		assert.Equal(t, domain.NewMoney(1499), sub.Price)
	})

	t.Run("extends running subscription", func(t *testing.T) {
		owner := newOwner()
		gym := newGym(owner)
		started := now.AddDate(0, 0, -20)
		end := now.AddDate(0, 0, 10)
		gym.Subscription = domain.GymSubscription{Plan: domain.SaaSPlanPro, Status: domain.SubscriptionActive, StartDate: &started, EndDate: &end}
		svc, subs, gyms := setup(gym)
		subs.On("ExistsByPaymentID", mock.Anything, "pay_1").Return(false, nil)
		subs.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
		gyms.On("SetSubscription", mock.Anything, gym.ID, mock.MatchedBy(func(s domain.GymSubscription) bool {
			return s.StartDate.Equal(started)
		})).Return(nil)

		in := input(gym.ID)
		in.BillingCycle = domain.BillingYearly
		sub, err := svc.ActivateSubscription(context.Background(), owner, in)
		require.NoError(t, err)
		assert.Equal(t, end, sub.StartDate)
		assert.Equal(t, end.AddDate(1, 0, 0), sub.EndDate)
	})

	t.Run("bad signature", func(t *testing.T) {
		owner := newOwner()
		gym := newGym(owner)
		svc, subs, _ := setup(gym)
		in := input(gym.ID)
		in.Signature = "deadbeef"

		_, err := svc.ActivateSubscription(context.Background(), owner, in)
		assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
		subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("payment replay", func(t *testing.T) {
		owner := newOwner()
		gym := newGym(owner)
		svc, subs, _ := setup(gym)
		subs.On("ExistsByPaymentID", mock.Anything, "pay_1").Return(true, nil)

		_, err := svc.ActivateSubscription(context.Background(), owner, input(gym.ID))
		assert.ErrorIs(t, err, ErrPaymentAlreadyApplied)
	})
}

func TestGetSubscription(t *testing.T) {
	owner := newOwner()
	gym := newGym(owner)
	gyms := new(MockGymRepo)
	subs := new(MockSubscriptionRepo)
	members := new(MockMemberRepo)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
	members.On("CountActiveByGym", mock.Anything, gym.ID).Return(int64(42), nil)
	subs.On("GetLatestByGym", mock.Anything, gym.ID).Return(nil, assert.AnError)

	svc := NewSubscriptionService(NewAccessGate(gyms), subs, gyms, members, payment.NewHMACVerifier("x"), &fakeTx{}, testLogger())
	_, err := svc.GetSubscription(context.Background(), owner, gym.ID)
	assert.ErrorIs(t, err, assert.AnError)

	subs.ExpectedCalls = nil
	subs.On("GetLatestByGym", mock.Anything, gym.ID).Return(&domain.Subscription{Plan: domain.SaaSPlanPro}, nil)
	got, err := svc.GetSubscription(context.Background(), owner, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaaSPlanPro, got.EffectiveTier)
	assert.Equal(t, int64(42), got.Usage.Members)
	assert.Equal(t, domain.LimitsFor(domain.SaaSPlanPro), got.Limits)
}
