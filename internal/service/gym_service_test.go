package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestGymService(gyms *MockGymRepo, users *MockUserRepo, now time.Time) *gymService {
	defaults := config.AppConfig{Timezone: "Asia/Kolkata", Currency: "INR"}
	svc := NewGymService(NewAccessGate(gyms), gyms, users, &fakeTx{atomic: true}, defaults, testLogger()).(*gymService)
	svc.now = fixedClock(now)
	return svc
}

func TestCreateGym_StartsOnTrial(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	owner := newOwner()
	gyms := new(MockGymRepo)
	users := new(MockUserRepo)
	id := primitive.NewObjectID()

	gyms.On("ListByIDs", mock.Anything, mock.Anything).Return([]domain.Gym{}, nil)
	gyms.On("CountActiveByOwner", mock.Anything, owner.ID).Return(int64(0), nil)
	gyms.On("Create", mock.Anything, mock.AnythingOfType("*domain.Gym")).Return(id, nil)
	users.On("AddOwnedGym", mock.Anything, owner.ID, id).Return(nil)

	gym, err := newTestGymService(gyms, users, now).CreateGym(context.Background(), owner, CreateGymInput{Name: "Iron Temple", Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, id, gym.ID)
	assert.Equal(t, "USD", gym.Settings.Currency)
	assert.Equal(t, "Asia/Kolkata", gym.Settings.Timezone)
	assert.Equal(t, domain.SubscriptionTrial, gym.Subscription.Status)
	assert.Equal(t, now.Add(domain.TrialPeriod), *gym.Subscription.EndDate)
	assert.Contains(t, owner.OwnedGyms, id)
	assert.Equal(t, domain.SaaSPlanTrial, gym.EffectiveTier(now))
}

func TestCreateGym_Limits(t *testing.T) {
	now := time.Now()

	t.Run("trial owner already has a gym", func(t *testing.T) {
		owner := newOwner()
		gyms := new(MockGymRepo)
		gyms.On("ListByIDs", mock.Anything, mock.Anything).Return([]domain.Gym{{IsActive: true}}, nil)
		gyms.On("CountActiveByOwner", mock.Anything, owner.ID).Return(int64(1), nil)

		_, err := newTestGymService(gyms, new(MockUserRepo), now).CreateGym(context.Background(), owner, CreateGymInput{Name: "Second"})
		assert.ErrorIs(t, err, ErrPlanLimitReached)
		gyms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pro gym lifts the limit", func(t *testing.T) {
		owner := newOwner()
		pro := *newGym(owner)
		gyms := new(MockGymRepo)
		users := new(MockUserRepo)
		gyms.On("ListByIDs", mock.Anything, owner.OwnedGyms).Return([]domain.Gym{pro}, nil)
		gyms.On("CountActiveByOwner", mock.Anything, owner.ID).Return(int64(1), nil)
		gyms.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
		users.On("AddOwnedGym", mock.Anything, owner.ID, mock.Anything).Return(nil)

		_, err := newTestGymService(gyms, users, now).CreateGym(context.Background(), owner, CreateGymInput{Name: "Second"})
		assert.NoError(t, err)
	})

	t.Run("managers cannot create gyms", func(t *testing.T) {
		_, err := newTestGymService(new(MockGymRepo), new(MockUserRepo), now).
			CreateGym(context.Background(), newManagerUser(primitive.NewObjectID()), CreateGymInput{Name: "Nope"})
		assert.ErrorIs(t, err, ErrOwnerOnly)
	})

	t.Run("bad timezone", func(t *testing.T) {
		_, err := newTestGymService(new(MockGymRepo), new(MockUserRepo), now).
			CreateGym(context.Background(), newOwner(), CreateGymInput{Name: "Tz", Timezone: "Mars/Olympus"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestListGyms_ManagerSeesOnlyAssigned(t *testing.T) {
	owner := newOwner()
	manager := newManagerUser(owner.ID)
	assigned := newGym(owner, manager.ID)
	revoked := newGym(owner)
	manager.ManagedGyms = []primitive.ObjectID{assigned.ID, revoked.ID}

	gyms := new(MockGymRepo)
	gyms.On("ListByIDs", mock.Anything, manager.ManagedGyms).Return([]domain.Gym{*assigned, *revoked}, nil)

	got, err := newTestGymService(gyms, new(MockUserRepo), time.Now()).ListGyms(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, assigned.ID, got[0].ID)
}
