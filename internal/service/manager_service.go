package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type CreateManagerInput struct {
	Name        string               `json:"name" validate:"required,min=2,max=100"`
	Email       string               `json:"email" validate:"required,email"`
	Password    string               `json:"password" validate:"required,min=6,max=72"`
	DialCode    string               `json:"dialCode" validate:"omitempty,numeric,max=4"`
	PhoneNumber string               `json:"phoneNumber" validate:"omitempty,numeric,min=7,max=15"`
	GymIDs      []primitive.ObjectID `json:"gymIds" validate:"required,min=1"`
}

type UpdateManagerInput struct {
	ManagerID   primitive.ObjectID   `json:"managerId" validate:"required"`
	Name        *string              `json:"name" validate:"omitempty,min=2,max=100"`
	PhoneNumber *string              `json:"phoneNumber" validate:"omitempty,numeric,min=7,max=15"`
	Password    *string              `json:"password" validate:"omitempty,min=6,max=72"`
	IsActive    *bool                `json:"isActive"`
	GymIDs      []primitive.ObjectID `json:"gymIds" validate:"omitempty,min=1"`
}

// ManagerService lets an owner administer the staff accounts of their gyms.
type ManagerService interface {
	CreateManager(ctx context.Context, actor *domain.User, in CreateManagerInput) (*domain.User, error)
	ListManagers(ctx context.Context, actor *domain.User) ([]domain.User, error)
	UpdateManager(ctx context.Context, actor *domain.User, in UpdateManagerInput) (*domain.User, error)
	DeleteManager(ctx context.Context, actor *domain.User, managerID primitive.ObjectID) error
}

type managerService struct {
	userRepo repository.UserRepository
	gymRepo  repository.GymRepository
	tx       repository.TxManager
	logger   zerolog.Logger
	now      func() time.Time
}

func NewManagerService(userRepo repository.UserRepository, gymRepo repository.GymRepository, tx repository.TxManager, logger *zerolog.Logger) ManagerService {
	return &managerService{
		userRepo: userRepo,
		gymRepo:  gymRepo,
		tx:       tx,
		logger:   logger.With().Str("channel", "manager_service").Logger(),
		now:      time.Now,
	}
}

func (s *managerService) CreateManager(ctx context.Context, actor *domain.User, in CreateManagerInput) (*domain.User, error) {
	if actor == nil || !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	gymIDs := lo.Uniq(in.GymIDs)
	if err := s.checkOwnedGyms(actor, gymIDs); err != nil {
		return nil, err
	}

	owned, err := s.gymRepo.ListByIDs(ctx, actor.OwnedGyms)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load owned gyms")
	}
	count, err := s.userRepo.CountActiveManagers(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to count managers")
	}
	if !domain.LimitsFor(bestTier(owned, s.now())).CanAddStaff(int(count)) {
		return nil, errors.Wrap(ErrPlanLimitReached, "staff limit")
	}

	_, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "unable to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	manager := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
		DialCode:     lo.Ternary(in.DialCode != "", in.DialCode, domain.DefaultDialCode),
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleManager,
		IsActive:     true,
		ManagedGyms:  gymIDs,
		AssignedBy:   &actor.ID,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.userRepo.Create(ctx, manager)
		if err != nil {
			return err
		}
		manager.ID = id
		return s.gymRepo.AddManager(ctx, gymIDs, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, errors.Wrap(err, "unable to create manager")
	}

	s.logger.Info().Str("owner", actor.ID.Hex()).Str("manager", manager.ID.Hex()).Msg("manager created")
	return sanitizeUser(manager), nil
}

func (s *managerService) ListManagers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor == nil || !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}
	managers, err := s.userRepo.ListManagersByOwner(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list managers")
	}
	for i := range managers {
		managers[i].PasswordHash = ""
	}
	return managers, nil
}

func (s *managerService) UpdateManager(ctx context.Context, actor *domain.User, in UpdateManagerInput) (*domain.User, error) {
	if actor == nil || !actor.IsOwner() {
		return nil, ErrOwnerOnly
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	manager, err := s.loadManager(ctx, actor, in.ManagerID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		manager.Name = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNumber != nil {
		manager.PhoneNumber = *in.PhoneNumber
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrHashingFailed
		}
		manager.PasswordHash = string(hash)
	}
	if in.IsActive != nil {
		manager.IsActive = *in.IsActive
	}
	var gymIDs []primitive.ObjectID
	if in.GymIDs != nil {
		gymIDs = lo.Uniq(in.GymIDs)
		if err := s.checkOwnedGyms(actor, gymIDs); err != nil {
			return nil, err
		}
		manager.ManagedGyms = gymIDs
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, manager); err != nil {
			return err
		}
		if gymIDs == nil {
			return nil
		}
		if err := s.gymRepo.RemoveManager(ctx, manager.ID, gymIDs); err != nil {
			return err
		}
		return s.gymRepo.AddManager(ctx, gymIDs, manager.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, errors.Wrap(err, "unable to update manager")
	}
	return sanitizeUser(manager), nil
}

// DeleteManager deactivates the account and removes it from every gym.
func (s *managerService) DeleteManager(ctx context.Context, actor *domain.User, managerID primitive.ObjectID) error {
	if actor == nil || !actor.IsOwner() {
		return ErrOwnerOnly
	}
	manager, err := s.loadManager(ctx, actor, managerID)
	if err != nil {
		return err
	}
	manager.IsActive = false
	manager.ManagedGyms = []primitive.ObjectID{}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, manager); err != nil {
			return err
		}
		return s.gymRepo.RemoveManager(ctx, manager.ID, nil)
	})
	if err != nil {
		return errors.Wrap(err, "unable to delete manager")
	}
	s.logger.Info().Str("owner", actor.ID.Hex()).Str("manager", manager.ID.Hex()).Msg("manager deactivated")
	return nil
}

// loadManager returns a manager created by the acting owner.
func (s *managerService) loadManager(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, errors.Wrap(err, "unable to load manager")
	}
	if !user.IsManager() || user.AssignedBy == nil || *user.AssignedBy != actor.ID {
		return nil, ErrManagerNotFound
	}
	return user, nil
}

// checkOwnedGyms requires every gym to belong to the owner.
func (s *managerService) checkOwnedGyms(actor *domain.User, gymIDs []primitive.ObjectID) error {
	if !lo.Every(actor.OwnedGyms, gymIDs) {
		return ErrAccessDenied
	}
	return nil
}
