package repository

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxManager runs fn as a single unit of work. Repository calls made with the
// ctx handed to fn take part in the same transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether WithTransaction really rolls back on error.
	Atomic() bool
}

// Page is an offset window over a sorted result set. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64((p.Page - 1) * p.Limit)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListManagersByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.User, error)
	CountActiveManagers(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, user *domain.User) error
	AddOwnedGym(ctx context.Context, ownerID, gymID primitive.ObjectID) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// GymRepository defines the interface for interacting with gym data.
type GymRepository interface {
	Create(ctx context.Context, gym *domain.Gym) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Gym, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Gym, error)
	CountActiveByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	AddManager(ctx context.Context, gymIDs []primitive.ObjectID, managerID primitive.ObjectID) error
	RemoveManager(ctx context.Context, managerID primitive.ObjectID, exceptGymIDs []primitive.ObjectID) error
	SetSubscription(ctx context.Context, gymID primitive.ObjectID, sub domain.GymSubscription) error
}

// PlanRepository defines the interface for interacting with membership plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// GetByIDs returns the plans among ids, active or not.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error)
	ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// MemberFilter narrows member listings. Status is evaluated against Today
// (midnight UTC of the business date) rather than the stored status.
type MemberFilter struct {
	GymID  primitive.ObjectID
	Status domain.MembershipStatus
	Batch  domain.Batch
	Search string
	Today  time.Time
}

// MemberRepository defines the interface for interacting with member data.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Member, error)
	ExistsByMemberID(ctx context.Context, gymID primitive.ObjectID, memberID string) (bool, error)
	List(ctx context.Context, filter MemberFilter, page Page) ([]domain.Member, int64, error)
	ListActiveByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Member, error)
	CountActiveByGym(ctx context.Context, gymID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, member *domain.Member) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// TransactionFilter narrows ledger listings. Zero times are unbounded.
type TransactionFilter struct {
	GymID primitive.ObjectID
	From  time.Time
	To    time.Time
	Type  domain.TransactionType
}

// TransactionRepository is append-only: there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) (primitive.ObjectID, error)
	List(ctx context.Context, filter TransactionFilter, page Page) ([]domain.Transaction, int64, error)
	ListBetween(ctx context.Context, gymID primitive.ObjectID, from, to time.Time) ([]domain.Transaction, error)
	ListRecent(ctx context.Context, gymID primitive.ObjectID, limit int64) ([]domain.Transaction, error)
}

// MembershipHistoryRepository is append-only.
type MembershipHistoryRepository interface {
	Create(ctx context.Context, entry *domain.MembershipHistory) (primitive.ObjectID, error)
	ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.MembershipHistory, error)
}

// SubscriptionRepository stores SaaS billing records.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetLatestByGym(ctx context.Context, gymID primitive.ObjectID) (*domain.Subscription, error)
	ExistsByPaymentID(ctx context.Context, paymentID string) (bool, error)
}
