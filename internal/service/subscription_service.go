package service

import (
	"context"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/payment"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivateSubscriptionInput struct {
	GymID        primitive.ObjectID  `json:"gymId" validate:"required"`
	Plan         domain.SaaSPlan     `json:"plan" validate:"required,oneof=basic pro premium"`
	BillingCycle domain.BillingCycle `json:"billingCycle" validate:"required,oneof=monthly yearly"`
	OrderID      string              `json:"orderId" validate:"required"`
	PaymentID    string              `json:"paymentId" validate:"required"`
	Signature    string              `json:"signature" validate:"required"`
	AutoRenew    bool                `json:"autoRenew"`
}

// SubscriptionUsage compares a gym's current size with its tier limits.
type SubscriptionUsage struct {
	Members int64 `json:"members"`
}

type SubscriptionOverview struct {
	Gym           primitive.ObjectID     `json:"gymId"`
	EffectiveTier domain.SaaSPlan        `json:"effectiveTier"`
	Subscription  domain.GymSubscription `json:"subscription"`
	Limits        domain.PlanLimits      `json:"limits"`
	Usage         SubscriptionUsage      `json:"usage"`
	Latest        *domain.Subscription   `json:"latest,omitempty"`
}

// SubscriptionService manages the gym's own SaaS plan.
type SubscriptionService interface {
	GetSubscription(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*SubscriptionOverview, error)
	ActivateSubscription(ctx context.Context, actor *domain.User, in ActivateSubscriptionInput) (*domain.Subscription, error)
}

type subscriptionService struct {
	gate       AccessGate
	subRepo    repository.SubscriptionRepository
	gymRepo    repository.GymRepository
	memberRepo repository.MemberRepository
	verifier   payment.Verifier
	tx         repository.TxManager
	logger     zerolog.Logger
	now        func() time.Time
}

func NewSubscriptionService(
	gate AccessGate,
	subRepo repository.SubscriptionRepository,
	gymRepo repository.GymRepository,
	memberRepo repository.MemberRepository,
	verifier payment.Verifier,
	tx repository.TxManager,
	logger *zerolog.Logger,
) SubscriptionService {
	return &subscriptionService{
		gate:       gate,
		subRepo:    subRepo,
		gymRepo:    gymRepo,
		memberRepo: memberRepo,
		verifier:   verifier,
		tx:         tx,
		logger:     logger.With().Str("channel", "subscription_service").Logger(),
		now:        time.Now,
	}
}

func (s *subscriptionService) GetSubscription(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*SubscriptionOverview, error) {
	gym, err := s.gate.Authorize(ctx, actor, gymID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.CountActiveByGym(ctx, gym.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to count members")
	}
	latest, err := s.subRepo.GetLatestByGym(ctx, gym.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "unable to load subscription")
	}

	tier := gym.EffectiveTier(s.now())
	return &SubscriptionOverview{
		Gym:           gym.ID,
		EffectiveTier: tier,
		Subscription:  gym.Subscription,
		Limits:        domain.LimitsFor(tier),
		Usage:         SubscriptionUsage{Members: members},
		Latest:        latest,
	}, nil
}

// ActivateSubscription records a paid subscription once the gateway
// signature checks out. Paying while a subscription is still running
// extends it from its current end date.
func (s *subscriptionService) ActivateSubscription(ctx context.Context, actor *domain.User, in ActivateSubscriptionInput) (*domain.Subscription, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	gym, err := s.gate.AuthorizeOwner(ctx, actor, in.GymID)
	if err != nil {
		return nil, err
	}
	price, ok := domain.SaaSPrice(in.Plan, in.BillingCycle)
	if !ok {
		return nil, newValidationError("plan", "no price for this plan and billing cycle")
	}

	if err := s.verifier.Verify(ctx, in.OrderID, in.PaymentID, in.Signature); err != nil {
		s.logger.Warn().Err(err).Str("gym", gym.ID.Hex()).Str("order", in.OrderID).Msg("payment verification failed")
		return nil, ErrPaymentVerificationFailed
	}
	used, err := s.subRepo.ExistsByPaymentID(ctx, in.PaymentID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to check payment")
	}
	if used {
		return nil, ErrPaymentAlreadyApplied
	}

	now := s.now().UTC()
	start := now
	cur := gym.Subscription
	if cur.Status == domain.SubscriptionActive && cur.EndDate != nil && cur.EndDate.After(now) {
		start = *cur.EndDate
	}
	end := start.AddDate(0, 1, 0)
	if in.BillingCycle == domain.BillingYearly {
		end = start.AddDate(1, 0, 0)
	}

	sub := &domain.Subscription{
		User:         actor.ID,
		Gym:          gym.ID,
		Plan:         in.Plan,
		Status:       domain.SubscriptionActive,
		BillingCycle: in.BillingCycle,
		StartDate:    start,
		EndDate:      end,
		Price:        price,
		PaymentID:    in.PaymentID,
		OrderID:      in.OrderID,
		AutoRenew:    in.AutoRenew,
	}
	gymSub := domain.GymSubscription{
		Plan:      in.Plan,
		Status:    domain.SubscriptionActive,
		StartDate: &sub.StartDate,
		EndDate:   &sub.EndDate,
		TrialUsed: true,
	}
	if cur.Status == domain.SubscriptionActive && cur.StartDate != nil && !start.Equal(now) {
		gymSub.StartDate = cur.StartDate
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.subRepo.Create(ctx, sub)
		if err != nil {
			return err
		}
		sub.ID = id
		return s.gymRepo.SetSubscription(ctx, gym.ID, gymSub)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrPaymentAlreadyApplied
		}
		return nil, errors.Wrap(err, "unable to activate subscription")
	}

	s.logger.Info().Str("gym", gym.ID.Hex()).Str("plan", string(in.Plan)).
		Time("end", end).Msg("subscription activated")
	return sub, nil
}
