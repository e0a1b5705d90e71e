package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/events"
	"alcyxob/gym-manager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

func normalizePage(page, limit int) repository.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return repository.Page{Page: page, Limit: limit}
}

func newPagination(p repository.Page, total int64) Pagination {
	pages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: pages,
		HasMore:    int64(p.Page) < pages,
	}
}

// invalidateDashboard drops the cached dashboard of a gym. A failure only
// means the next read may be stale until the TTL runs out.
func invalidateDashboard(ctx context.Context, c cache.DashboardCache, logger *zerolog.Logger, gymID primitive.ObjectID) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, cache.DashboardKey(gymID.Hex())); err != nil {
		logger.Warn().Err(err).Str("gym", gymID.Hex()).Msg("unable to invalidate dashboard cache")
	}
}

func publishEvent(ctx context.Context, p events.Publisher, logger *zerolog.Logger, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.Warn().Err(err).Str("type", string(e.Type)).Str("member", e.MemberID).Msg("unable to publish event")
	}
}

var tierRank = map[domain.SaaSPlan]int{
	domain.SaaSPlanTrial:   0,
	domain.SaaSPlanBasic:   1,
	domain.SaaSPlanPro:     2,
	domain.SaaSPlanPremium: 3,
}

// bestTier returns the highest tier currently in effect across an owner's
// gyms. Owner-wide limits (gyms, staff) are governed by it.
func bestTier(gyms []domain.Gym, now time.Time) domain.SaaSPlan {
	best := domain.SaaSPlanTrial
	for i := range gyms {
		if !gyms[i].IsActive {
			continue
		}
		if t := gyms[i].EffectiveTier(now); tierRank[t] > tierRank[best] {
			best = t
		}
	}
	return best
}

// newInvoiceNumber returns INV-<yyyymmdd>-<8 hex chars>.
func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "INV-" + now.UTC().Format("20060102") + "-" + suffix
}

func sanitizeUser(u *domain.User) *domain.User {
	if u != nil {
		u.PasswordHash = ""
	}
	return u
}
