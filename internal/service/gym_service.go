package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateGymInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"max=200"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
	Language string `json:"language" validate:"omitempty,max=10"`
}

// GymService manages gyms (tenants).
type GymService interface {
	CreateGym(ctx context.Context, actor *domain.User, in CreateGymInput) (*domain.Gym, error)
	ListGyms(ctx context.Context, actor *domain.User) ([]domain.Gym, error)
	GetGym(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error)
}

type gymService struct {
	gate     AccessGate
	gymRepo  repository.GymRepository
	userRepo repository.UserRepository
	tx       repository.TxManager
	defaults config.AppConfig
	logger   zerolog.Logger
	now      func() time.Time
}

func NewGymService(
	gate AccessGate,
	gymRepo repository.GymRepository,
	userRepo repository.UserRepository,
	tx repository.TxManager,
	defaults config.AppConfig,
	logger *zerolog.Logger,
) GymService {
	return &gymService{
		gate:     gate,
		gymRepo:  gymRepo,
		userRepo: userRepo,
		tx:       tx,
		defaults: defaults,
		logger:   logger.With().Str("channel", "gym_service").Logger(),
		now:      time.Now,
	}
}

// CreateGym creates a gym for the acting owner. The new gym starts on a
// trial subscription.
func (s *gymService) CreateGym(ctx context.Context, actor *domain.User, in CreateGymInput) (*domain.Gym, error) {
	if actor == nil || !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	owned, err := s.gymRepo.ListByIDs(ctx, actor.OwnedGyms)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load owned gyms")
	}
	count, err := s.gymRepo.CountActiveByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to count gyms")
	}
	if !domain.LimitsFor(bestTier(owned, now)).CanAddGym(int(count)) {
		return nil, errors.Wrap(ErrPlanLimitReached, "gym limit")
	}

	trialEnd := now.Add(domain.TrialPeriod)
	gym := &domain.Gym{
		Name:     strings.TrimSpace(in.Name),
		Location: strings.TrimSpace(in.Location),
		Owner:    actor.ID,
		Managers: []primitive.ObjectID{},
		Settings: domain.GymSettings{
			Currency: lo.Ternary(in.Currency != "", strings.ToUpper(in.Currency), s.defaults.Currency),
			Timezone: lo.Ternary(in.Timezone != "", in.Timezone, s.defaults.Timezone),
			Language: lo.Ternary(in.Language != "", in.Language, "en"),
		},
		Subscription: domain.GymSubscription{
			Status:    domain.SubscriptionTrial,
			StartDate: &now,
			EndDate:   &trialEnd,
			TrialUsed: true,
		},
		IsActive: true,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.gymRepo.Create(ctx, gym)
		if err != nil {
			return errors.Wrap(err, "unable to create gym")
		}
		gym.ID = id
		return errors.Wrap(s.userRepo.AddOwnedGym(ctx, actor.ID, id), "unable to link gym to owner")
	})
	if err != nil {
		return nil, err
	}

	actor.OwnedGyms = append(actor.OwnedGyms, gym.ID)
	s.logger.Info().Str("gym", gym.ID.Hex()).Str("owner", actor.ID.Hex()).Msg("gym created")
	return gym, nil
}

// ListGyms returns the gyms the actor owns or manages.
func (s *gymService) ListGyms(ctx context.Context, actor *domain.User) ([]domain.Gym, error) {
	if actor == nil {
		return nil, ErrAccessDenied
	}
	ids := actor.ManagedGyms
	if actor.IsOwner() {
		ids = actor.OwnedGyms
	}
	if len(ids) == 0 {
		return []domain.Gym{}, nil
	}
	gyms, err := s.gymRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list gyms")
	}
	// managedGyms may lag behind a gym's managers set; the gym is authoritative.
	return lo.Filter(gyms, func(g domain.Gym, _ int) bool {
		return g.IsActive && (g.Owner == actor.ID || g.HasManager(actor.ID))
	}), nil
}

func (s *gymService) GetGym(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error) {
	return s.gate.Authorize(ctx, actor, gymID)
}
