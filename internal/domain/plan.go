package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DurationUnit is the calendar unit of a plan duration.
type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitMonths DurationUnit = "months"
	UnitYears  DurationUnit = "years"
)

// PlanDuration is a (value, unit) pair such as 6 months.
type PlanDuration struct {
	Value int          `bson:"value" json:"value"`
	Unit  DurationUnit `bson:"unit" json:"unit"`
}

// String renders the duration the way it is denormalized onto transactions ("6 months").
func (d PlanDuration) String() string {
	return fmt.Sprintf("%d %s", d.Value, d.Unit)
}

// Plan is a purchasable membership template owned by exactly one gym.
type Plan struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Gym      primitive.ObjectID `bson:"gym" json:"gym"`
	Name     string             `bson:"name" json:"name"`
	Duration PlanDuration       `bson:"duration" json:"duration"`
	// Approximate length used for display and sorting only.
	DurationInDays int       `bson:"durationInDays" json:"durationInDays"`
	Price          Money     `bson:"price" json:"price"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	IsActive       bool      `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}
