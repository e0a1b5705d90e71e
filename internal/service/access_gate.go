package service

import (
	"context"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessGate decides whether a user may act on a gym. Every gym-scoped
// operation calls it before touching data. Results are never cached.
type AccessGate interface {
	// Authorize allows the gym's owner and its assigned managers.
	Authorize(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error)
	// AuthorizeOwner allows only the gym's owner.
	AuthorizeOwner(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error)
}

type accessGate struct {
	gymRepo repository.GymRepository
}

func NewAccessGate(gymRepo repository.GymRepository) AccessGate {
	return &accessGate{gymRepo: gymRepo}
}

func (g *accessGate) Authorize(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error) {
	gym, err := g.load(ctx, actor, gymID)
	if err != nil {
		return nil, err
	}
	if gym.Owner == actor.ID || gym.HasManager(actor.ID) {
		return gym, nil
	}
	return nil, ErrAccessDenied
}

func (g *accessGate) AuthorizeOwner(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error) {
	gym, err := g.load(ctx, actor, gymID)
	if err != nil {
		return nil, err
	}
	if gym.Owner == actor.ID {
		return gym, nil
	}
	if gym.HasManager(actor.ID) {
		return nil, ErrOwnerOnly
	}
	return nil, ErrAccessDenied
}

func (g *accessGate) load(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*domain.Gym, error) {
	if actor == nil || !actor.IsActive {
		return nil, ErrAccessDenied
	}
	if gymID.IsZero() {
		return nil, ErrGymNotFound
	}
	gym, err := g.gymRepo.GetByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGymNotFound
		}
		return nil, errors.Wrap(err, "unable to load gym")
	}
	if !gym.IsActive {
		return nil, ErrGymNotFound
	}
	return gym, nil
}
