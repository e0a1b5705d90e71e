package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanService(t *testing.T) {
	owner := newOwner()
	manager := newManagerUser(owner.ID)
	gym := newGym(owner, manager.ID)
	gyms := new(MockGymRepo)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)

	plans := new(MockPlanRepo)
	dashCache := cache.NewMemoryCache()
	svc := NewPlanService(NewAccessGate(gyms), plans, dashCache, testLogger())
	ctx := context.Background()
	key := cache.DashboardKey(gym.ID.Hex())

	t.Run("create", func(t *testing.T) {
		require.NoError(t, dashCache.Set(ctx, key, []byte(`{}`), time.Hour))
		id := primitive.NewObjectID()
		plans.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Plan) bool {
			return p.Name == "Half Yearly" && p.DurationInDays == 180 && p.IsActive
		})).Return(id, nil).Once()

		plan, err := svc.CreatePlan(ctx, owner, CreatePlanInput{
			GymID:    gym.ID,
			Name:     " Half Yearly ",
			Duration: domain.PlanDuration{Value: 6, Unit: domain.UnitMonths},
			Price:    domain.NewMoney(6000),
		})
		require.NoError(t, err)
		assert.Equal(t, id, plan.ID)
		assert.Equal(t, 0, dashCache.Len())
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := svc.CreatePlan(ctx, owner, CreatePlanInput{
			GymID:    gym.ID,
			Name:     "Weekly",
			Duration: domain.PlanDuration{Value: 1, Unit: "weeks"},
			Price:    domain.NewMoney(300),
		})
		assert.ErrorIs(t, err, membership.ErrInvalidDurationUnit)
		assert.True(t, IsValidation(err))
	})

	t.Run("managers cannot create", func(t *testing.T) {
		_, err := svc.CreatePlan(ctx, manager, CreatePlanInput{
			GymID:    gym.ID,
			Name:     "Monthly",
			Duration: domain.PlanDuration{Value: 1, Unit: domain.UnitMonths},
		})
		assert.ErrorIs(t, err, ErrOwnerOnly)
	})

	t.Run("managers can list", func(t *testing.T) {
		plans.On("ListActiveByGym", mock.Anything, gym.ID).Return([]domain.Plan{{Name: "Monthly"}}, nil).Once()
		got, err := svc.ListPlans(ctx, manager, gym.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("update", func(t *testing.T) {
		existing := newPlan(gym.ID, "Monthly", 1000, domain.PlanDuration{Value: 1, Unit: domain.UnitMonths})
		plans.On("GetByID", mock.Anything, existing.ID).Return(existing, nil).Once()
		plans.On("Update", mock.Anything, existing).Return(nil).Once()

		got, err := svc.UpdatePlan(ctx, owner, UpdatePlanInput{
			PlanID:   existing.ID,
			Price:    ptr(domain.NewMoney(1200)),
			Duration: &domain.PlanDuration{Value: 1, Unit: domain.UnitYears},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.NewMoney(1200), got.Price)
		assert.Equal(t, 365, got.DurationInDays)
	})

	t.Run("delete inactive plan", func(t *testing.T) {
		gone := newPlan(gym.ID, "Old", 500, domain.PlanDuration{Value: 1, Unit: domain.UnitMonths})
		gone.IsActive = false
		plans.On("GetByID", mock.Anything, gone.ID).Return(gone, nil).Once()

		err := svc.DeletePlan(ctx, owner, gone.ID)
		assert.ErrorIs(t, err, ErrPlanNotFound)
		plans.AssertNotCalled(t, "Deactivate", mock.Anything, gone.ID)
	})

	t.Run("delete", func(t *testing.T) {
		p := newPlan(gym.ID, "Daily", 100, domain.PlanDuration{Value: 1, Unit: domain.UnitDays})
		plans.On("GetByID", mock.Anything, p.ID).Return(p, nil).Once()
		plans.On("Deactivate", mock.Anything, p.ID).Return(nil).Once()
		assert.NoError(t, svc.DeletePlan(ctx, owner, p.ID))
	})

	t.Run("missing", func(t *testing.T) {
		id := primitive.NewObjectID()
		plans.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()
		_, err := svc.UpdatePlan(ctx, owner, UpdatePlanInput{PlanID: id})
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}
