package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RenewalType string

const (
	RenewalNew       RenewalType = "new"
	RenewalRenewal   RenewalType = "renewal"
	RenewalUpgrade   RenewalType = "upgrade"
	RenewalDowngrade RenewalType = "downgrade"
	RenewalEarly     RenewalType = "early_renewal"
)

// MembershipHistory records one membership period a member held.
// Entries are appended, never rewritten.
type MembershipHistory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Gym         primitive.ObjectID `bson:"gym" json:"gym"`
	Member      primitive.ObjectID `bson:"member" json:"member"`
	Plan        primitive.ObjectID `bson:"plan" json:"plan"`
	PlanName    string             `bson:"planName" json:"planName"`
	PlanPrice   Money              `bson:"planPrice" json:"planPrice"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
	RenewalType RenewalType        `bson:"renewalType" json:"renewalType"`
	AmountPaid  Money              `bson:"amountPaid" json:"amountPaid"`
	Discount    Money              `bson:"discount" json:"discount"`
	FinalPrice  Money              `bson:"finalPrice" json:"finalPrice"`
	PaymentMode PaymentMode        `bson:"paymentMode,omitempty" json:"paymentMode,omitempty"`
	ProcessedBy primitive.ObjectID `bson:"processedBy" json:"processedBy"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
