package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaaSPlan is the product tier a gym pays for.
type SaaSPlan string

const (
	SaaSPlanBasic   SaaSPlan = "basic"
	SaaSPlanPro     SaaSPlan = "pro"
	SaaSPlanPremium SaaSPlan = "premium"
	// SaaSPlanTrial is never sold; it names the limits of an unpaid gym.
	SaaSPlanTrial SaaSPlan = "trial"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionTrial     SubscriptionStatus = "trial"
)

type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// TrialPeriod is how long a newly created gym runs on trial limits.
const TrialPeriod = 14 * 24 * time.Hour

// Subscription is the billing record of a gym's SaaS plan.
type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	Gym          primitive.ObjectID `bson:"gym" json:"gym"`
	Plan         SaaSPlan           `bson:"plan" json:"plan"`
	Status       SubscriptionStatus `bson:"status" json:"status"`
	BillingCycle BillingCycle       `bson:"billingCycle" json:"billingCycle"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	EndDate      time.Time          `bson:"endDate" json:"endDate"`
	Price        Money              `bson:"price" json:"price"`
	PaymentID    string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	OrderID      string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	AutoRenew    bool               `bson:"autoRenew" json:"autoRenew"`
	IsTrial      bool               `bson:"isTrial" json:"isTrial"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanLimits caps what a gym may hold on a given tier. Unlimited is -1.
type PlanLimits struct {
	MaxMembers int `json:"maxMembers"`
	MaxGyms    int `json:"maxGyms"`
	MaxStaff   int `json:"maxStaff"`
}

const Unlimited = -1

var planLimits = map[SaaSPlan]PlanLimits{
	SaaSPlanTrial:   {MaxMembers: 10, MaxGyms: 1, MaxStaff: 0},
	SaaSPlanBasic:   {MaxMembers: 50, MaxGyms: 1, MaxStaff: 0},
	SaaSPlanPro:     {MaxMembers: 200, MaxGyms: 3, MaxStaff: 10},
	SaaSPlanPremium: {MaxMembers: Unlimited, MaxGyms: Unlimited, MaxStaff: Unlimited},
}

// LimitsFor returns the limits of a tier; unknown tiers get trial limits.
func LimitsFor(plan SaaSPlan) PlanLimits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[SaaSPlanTrial]
}

// allows reports whether one more item fits under max.
func allows(max, current int) bool {
	return max == Unlimited || current < max
}

func (l PlanLimits) CanAddMember(current int) bool { return allows(l.MaxMembers, current) }
func (l PlanLimits) CanAddGym(current int) bool    { return allows(l.MaxGyms, current) }
func (l PlanLimits) CanAddStaff(current int) bool  { return allows(l.MaxStaff, current) }

// List prices per tier and billing cycle, in major units.
var saasPrices = map[SaaSPlan]map[BillingCycle]int64{
	SaaSPlanBasic:   {BillingMonthly: 999, BillingYearly: 9990},
	SaaSPlanPro:     {BillingMonthly: 1499, BillingYearly: 14990},
	SaaSPlanPremium: {BillingMonthly: 1999, BillingYearly: 19990},
}

// SaaSPrice returns the price of a tier for a billing cycle.
func SaaSPrice(plan SaaSPlan, cycle BillingCycle) (Money, bool) {
	byCycle, ok := saasPrices[plan]
	if !ok {
		return 0, false
	}
	p, ok := byCycle[cycle]
	if !ok {
		return 0, false
	}
	return NewMoney(p), true
}
