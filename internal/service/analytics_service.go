package service

import (
	"context"
	"encoding/json"
	"time"

	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const recentTransactionsLimit = 10

type DashboardStats struct {
	DueMembers     int `json:"dueMembers"`
	ExpiringToday  int `json:"expiringToday"`
	ExpiringSoon   int `json:"expiringSoon"`
	BirthdayToday  int `json:"birthdayToday"`
	ActiveMembers  int `json:"activeMembers"`
	ExpiredMembers int `json:"expiredMembers"`
	FrozenMembers  int `json:"frozenMembers"`
	TotalMembers   int `json:"totalMembers"`
}

type RevenueStats struct {
	// MoneyCollectedToday is every payment taken today net of refunds.
	MoneyCollectedToday domain.Money `json:"moneyCollectedToday"`
	// TodaySales counts new terms sold today: admissions plus renewals.
	TodaySales      domain.Money                        `json:"todaySales"`
	TodayAdmissions domain.Money                        `json:"todayAdmissions"`
	TodayRenewals   domain.Money                        `json:"todayRenewals"`
	RefundsToday    domain.Money                        `json:"refundsToday"`
	PaymentModes    map[domain.PaymentMode]domain.Money `json:"paymentModes"`
}

// RecentTransaction is a ledger entry with its member resolved for display.
type RecentTransaction struct {
	domain.Transaction
	MemberName string `json:"memberName"`
	MemberCode string `json:"memberCode"`
}

type Dashboard struct {
	GymID              primitive.ObjectID  `json:"gymId"`
	GeneratedAt        time.Time           `json:"generatedAt"`
	Stats              DashboardStats      `json:"stats"`
	Revenue            RevenueStats        `json:"revenue"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
}

// AnalyticsService builds the gym dashboard.
type AnalyticsService interface {
	ComputeDashboard(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*Dashboard, error)
}

type analyticsService struct {
	gate       AccessGate
	memberRepo repository.MemberRepository
	txnRepo    repository.TransactionRepository
	cache      cache.DashboardCache
	ttl        time.Duration
	classifier membership.Classifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAnalyticsService creates the aggregator. Dashboards are cached for ttl
// in dashboardCache; pass cache.NopCache{} to always recompute.
func NewAnalyticsService(
	gate AccessGate,
	memberRepo repository.MemberRepository,
	txnRepo repository.TransactionRepository,
	dashboardCache cache.DashboardCache,
	ttl time.Duration,
	classifier membership.Classifier,
	logger *zerolog.Logger,
) AnalyticsService {
	if dashboardCache == nil {
		dashboardCache = cache.NopCache{}
	}
	return &analyticsService{
		gate:       gate,
		memberRepo: memberRepo,
		txnRepo:    txnRepo,
		cache:      dashboardCache,
		ttl:        ttl,
		classifier: classifier,
		logger:     logger.With().Str("channel", "analytics_service").Logger(),
		now:        time.Now,
	}
}

func (s *analyticsService) ComputeDashboard(ctx context.Context, actor *domain.User, gymID primitive.ObjectID) (*Dashboard, error) {
	// Authorization is checked on every call, cached dashboard or not.
	if _, err := s.gate.Authorize(ctx, actor, gymID); err != nil {
		return nil, err
	}

	key := cache.DashboardKey(gymID.Hex())
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var d Dashboard
		if err := json.Unmarshal(raw, &d); err == nil {
			metrics.RecordCacheHit()
			return &d, nil
		}
		s.logger.Warn().Str("gym", gymID.Hex()).Msg("discarding undecodable cached dashboard")
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn().Err(err).Str("gym", gymID.Hex()).Msg("dashboard cache read failed")
	}
	metrics.RecordCacheMiss()

	started := time.Now()
	d, err := s.compute(ctx, gymID)
	if err != nil {
		return nil, err
	}
	metrics.DashboardComputeDuration.Observe(time.Since(started).Seconds())

	if raw, err := json.Marshal(d); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("gym", gymID.Hex()).Msg("dashboard cache write failed")
		}
	}
	return d, nil
}

func (s *analyticsService) compute(ctx context.Context, gymID primitive.ObjectID) (*Dashboard, error) {
	now := s.now()
	from, to := s.classifier.DayRange(now)

	var (
		members []domain.Member
		today   []domain.Transaction
		recent  []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.memberRepo.ListActiveByGym(gctx, gymID)
		return errors.Wrap(err, "unable to load members")
	})
	g.Go(func() error {
		var err error
		today, err = s.txnRepo.ListBetween(gctx, gymID, from.UTC(), to.UTC())
		return errors.Wrap(err, "unable to load today's transactions")
	})
	g.Go(func() error {
		var err error
		recent, err = s.txnRepo.ListRecent(gctx, gymID, recentTransactionsLimit)
		return errors.Wrap(err, "unable to load recent transactions")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved, err := s.resolveMembers(ctx, members, recent)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		GymID:              gymID,
		GeneratedAt:        now.UTC(),
		Stats:              aggregateStats(s.classifier, members, now),
		Revenue:            aggregateRevenue(today),
		RecentTransactions: resolved,
	}, nil
}

// resolveMembers attaches member names to recent transactions. Members that
// were deleted since are fetched by id.
func (s *analyticsService) resolveMembers(ctx context.Context, active []domain.Member, recent []domain.Transaction) ([]RecentTransaction, error) {
	byID := lo.KeyBy(active, func(m domain.Member) primitive.ObjectID { return m.ID })

	missing := lo.Uniq(lo.FilterMap(recent, func(t domain.Transaction, _ int) (primitive.ObjectID, bool) {
		_, ok := byID[t.Member]
		return t.Member, !ok
	}))
	if len(missing) > 0 {
		others, err := s.memberRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, errors.Wrap(err, "unable to resolve transaction members")
		}
		for _, m := range others {
			byID[m.ID] = m
		}
	}

	return lo.Map(recent, func(t domain.Transaction, _ int) RecentTransaction {
		rt := RecentTransaction{Transaction: t}
		if m, ok := byID[t.Member]; ok {
			rt.MemberName = m.Name
			rt.MemberCode = m.MemberID
		}
		return rt
	}), nil
}

func aggregateStats(c membership.Classifier, members []domain.Member, now time.Time) DashboardStats {
	status := func(m domain.Member) domain.MembershipStatus { return c.MembershipStatus(&m, now) }

	return DashboardStats{
		DueMembers: lo.CountBy(members, func(m domain.Member) bool { return m.DueAmount > 0 }),
		ExpiringToday: lo.CountBy(members, func(m domain.Member) bool {
			return !m.IsFrozen && c.IsExpiringToday(m.MembershipEndDate, now)
		}),
		ExpiringSoon: lo.CountBy(members, func(m domain.Member) bool {
			return !m.IsFrozen && c.IsExpiringSoon(m.MembershipEndDate, now)
		}),
		BirthdayToday:  lo.CountBy(members, func(m domain.Member) bool { return c.IsBirthdayToday(m.DateOfBirth, now) }),
		ActiveMembers:  lo.CountBy(members, func(m domain.Member) bool { return status(m) == domain.MembershipActive }),
		ExpiredMembers: lo.CountBy(members, func(m domain.Member) bool { return status(m) == domain.MembershipExpired }),
		FrozenMembers:  lo.CountBy(members, func(m domain.Member) bool { return status(m) == domain.MembershipFrozen }),
		TotalMembers:   len(members),
	}
}

func aggregateRevenue(txns []domain.Transaction) RevenueStats {
	sumOf := func(t domain.TransactionType) domain.Money {
		return lo.SumBy(txns, func(x domain.Transaction) domain.Money {
			return lo.Ternary(x.TransactionType == t, x.Amount, 0)
		})
	}
	payments := lo.Filter(txns, func(x domain.Transaction, _ int) bool {
		return x.TransactionType != domain.TransactionRefund
	})

	modes := lo.SliceToMap(domain.PaymentModes, func(m domain.PaymentMode) (domain.PaymentMode, domain.Money) { return m, 0 })
	for _, p := range payments {
		modes[p.PaymentMode] += p.Amount
	}

	admissions := sumOf(domain.TransactionAdmission)
	renewals := sumOf(domain.TransactionRenewal)
	refunds := sumOf(domain.TransactionRefund)
	return RevenueStats{
		MoneyCollectedToday: lo.SumBy(payments, func(x domain.Transaction) domain.Money { return x.Amount }) - refunds,
		TodaySales:          admissions + renewals,
		TodayAdmissions:     admissions,
		TodayRenewals:       renewals,
		RefundsToday:        refunds,
		PaymentModes:        modes,
	}
}
