package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GymSettings holds per-gym presentation preferences.
type GymSettings struct {
	Currency string `bson:"currency" json:"currency"`
	Timezone string `bson:"timezone" json:"timezone"`
	Language string `bson:"language" json:"language"`
}

// GymSubscription is the convenience copy of the gym's SaaS subscription,
// mirrored from the subscriptions collection by the billing flow.
type GymSubscription struct {
	Plan      SaaSPlan           `bson:"plan,omitempty" json:"plan,omitempty"`
	Status    SubscriptionStatus `bson:"status" json:"status"`
	StartDate *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	TrialUsed bool               `bson:"trialUsed" json:"trialUsed"`
}

// Gym is a tenant. All members, plans and ledger entries hang off a gym.
type Gym struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Location     string               `bson:"location" json:"location"`
	Owner        primitive.ObjectID   `bson:"owner" json:"owner"`
	Managers     []primitive.ObjectID `bson:"managers" json:"managers"`
	Settings     GymSettings          `bson:"settings" json:"settings"`
	Subscription GymSubscription      `bson:"subscription" json:"subscription"`
	IsActive     bool                 `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasManager reports whether userID is in the gym's managers set.
func (g *Gym) HasManager(userID primitive.ObjectID) bool {
	for _, m := range g.Managers {
		if m == userID {
			return true
		}
	}
	return false
}

// EffectiveTier returns the SaaS tier whose limits currently apply to the gym.
// A lapsed or missing paid subscription falls back to the trial tier.
func (g *Gym) EffectiveTier(now time.Time) SaaSPlan {
	sub := g.Subscription
	if sub.Status != SubscriptionActive || sub.Plan == "" {
		return SaaSPlanTrial
	}
	if sub.EndDate != nil && sub.EndDate.Before(now) {
		return SaaSPlanTrial
	}
	return sub.Plan
}
