package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Batch is the time-of-day slot a member usually trains in.
type Batch string

const (
	BatchMorning Batch = "Morning"
	BatchNoon    Batch = "Noon"
	BatchEvening Batch = "Evening"
	BatchNight   Batch = "Night"
)

// MembershipStatus is the coarse state of a member's current term.
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipExpired MembershipStatus = "expired"
	MembershipFrozen  MembershipStatus = "frozen"
)

// Member is a gym's customer.
//
// FinalPrice and DueAmount are derived from PlanPrice, Discount and AmountPaid
// and are recomputed before every write. MembershipStatus is persisted as a
// snapshot only; readers recompute it from MembershipEndDate.
type Member struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID string             `bson:"memberId" json:"memberId"` // Gym-assigned, unique per gym
	Gym      primitive.ObjectID `bson:"gym" json:"gym"`

	Name        string `bson:"name" json:"name"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
	Gender      Gender `bson:"gender" json:"gender"`
	Batch       Batch  `bson:"batch" json:"batch"`

	// --- Optional profile ---
	Email       string     `bson:"email,omitempty" json:"email,omitempty"`
	Height      float64    `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight      float64    `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Address     string     `bson:"address,omitempty" json:"address,omitempty"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
	DateOfBirth *time.Time `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Image       string     `bson:"image,omitempty" json:"image,omitempty"` // Object key in file storage

	// --- Membership term ---
	JoiningDate         time.Time           `bson:"joiningDate" json:"joiningDate"`
	CurrentPlan         *primitive.ObjectID `bson:"currentPlan,omitempty" json:"currentPlan,omitempty"`
	MembershipStartDate *time.Time          `bson:"membershipStartDate,omitempty" json:"membershipStartDate,omitempty"`
	MembershipEndDate   *time.Time          `bson:"membershipEndDate,omitempty" json:"membershipEndDate,omitempty"`
	MembershipStatus    MembershipStatus    `bson:"membershipStatus" json:"membershipStatus"`

	// --- Pricing ---
	PlanPrice  Money `bson:"planPrice" json:"planPrice"`
	Discount   Money `bson:"discount" json:"discount"`
	FinalPrice Money `bson:"finalPrice" json:"finalPrice"`
	AmountPaid Money `bson:"amountPaid" json:"amountPaid"`
	DueAmount  Money `bson:"dueAmount" json:"dueAmount"`

	IsFrozen   bool       `bson:"isFrozen" json:"isFrozen"`
	FrozenDate *time.Time `bson:"frozenDate,omitempty" json:"frozenDate,omitempty"`
	IsActive   bool       `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
