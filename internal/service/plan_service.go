package service

import (
	"context"
	"strings"

	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePlanInput struct {
	GymID       primitive.ObjectID  `json:"gymId" validate:"required"`
	Name        string              `json:"name" validate:"required,min=2,max=100"`
	Duration    domain.PlanDuration `json:"duration"`
	Price       domain.Money        `json:"price" validate:"gte=0"`
	Description string              `json:"description" validate:"max=500"`
}

// UpdatePlanInput patches a plan; nil fields are left unchanged.
type UpdatePlanInput struct {
	PlanID      primitive.ObjectID   `json:"planId" validate:"required"`
	Name        *string              `json:"name" validate:"omitempty,min=2,max=100"`
	Duration    *domain.PlanDuration `json:"duration"`
	Price       *domain.Money        `json:"price" validate:"omitempty,gte=0"`
	Description *string              `json:"description" validate:"omitempty,max=500"`
}

// PlanService manages a gym's membership plans. Owners create and change
// plans; managers may list them.
type PlanService interface {
	CreatePlan(ctx context.Context, actor *domain.User, in CreatePlanInput) (*domain.Plan, error)
	ListPlans(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) ([]domain.Plan, error)
	UpdatePlan(ctx context.Context, actor *domain.User, in UpdatePlanInput) (*domain.Plan, error)
	DeletePlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) error
}

type planService struct {
	gate     AccessGate
	planRepo repository.PlanRepository
	cache    cache.DashboardCache
	logger   zerolog.Logger
}

func NewPlanService(gate AccessGate, planRepo repository.PlanRepository, dashboardCache cache.DashboardCache, logger *zerolog.Logger) PlanService {
	return &planService{
		gate:     gate,
		planRepo: planRepo,
		cache:    dashboardCache,
		logger:   logger.With().Str("channel", "plan_service").Logger(),
	}
}

func (s *planService) CreatePlan(ctx context.Context, actor *domain.User, in CreatePlanInput) (*domain.Plan, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := membership.ValidateDuration(in.Duration); err != nil {
		return nil, err
	}
	if _, err := s.gate.AuthorizeOwner(ctx, actor, in.GymID); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Gym:            in.GymID,
		Name:           strings.TrimSpace(in.Name),
		Duration:       in.Duration,
		DurationInDays: membership.ApproxDays(in.Duration),
		Price:          in.Price,
		Description:    strings.TrimSpace(in.Description),
		IsActive:       true,
	}
	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create plan")
	}
	plan.ID = id

	invalidateDashboard(ctx, s.cache, &s.logger, in.GymID)
	s.logger.Info().Str("gym", in.GymID.Hex()).Str("plan", id.Hex()).Msg("plan created")
	return plan, nil
}

// ListPlans returns the gym's active plans, cheapest first.
func (s *planService) ListPlans(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) ([]domain.Plan, error) {
	if _, err := s.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListActiveByGym(ctx, gymID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list plans")
	}
	return plans, nil
}

func (s *planService) UpdatePlan(ctx context.Context, actor *domain.User, in UpdatePlanInput) (*domain.Plan, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	plan, err := s.loadPlan(ctx, actor, in.PlanID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		plan.Name = strings.TrimSpace(*in.Name)
	}
	if in.Duration != nil {
		if err := membership.ValidateDuration(*in.Duration); err != nil {
			return nil, err
		}
		plan.Duration = *in.Duration
		plan.DurationInDays = membership.ApproxDays(*in.Duration)
	}
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.Description != nil {
		plan.Description = strings.TrimSpace(*in.Description)
	}

	// Existing members keep the price and dates they bought; only new
	// enrollments and renewals see the change.
	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, errors.Wrap(err, "unable to update plan")
	}

	invalidateDashboard(ctx, s.cache, &s.logger, plan.Gym)
	return plan, nil
}

func (s *planService) DeletePlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) error {
	plan, err := s.loadPlan(ctx, actor, planID)
	if err != nil {
		return err
	}
	if err := s.planRepo.Deactivate(ctx, plan.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return errors.Wrap(err, "unable to delete plan")
	}

	invalidateDashboard(ctx, s.cache, &s.logger, plan.Gym)
	s.logger.Info().Str("gym", plan.Gym.Hex()).Str("plan", plan.ID.Hex()).Msg("plan deactivated")
	return nil
}

// loadPlan fetches an active plan and checks the actor owns its gym.
func (s *planService) loadPlan(ctx context.Context, actor *domain.User, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, errors.Wrap(err, "unable to load plan")
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}
	if _, err := s.gate.AuthorizeOwner(ctx, actor, plan.Gym); err != nil {
		return nil, err
	}
	return plan, nil
}
