package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
)

// DefaultDialCode is applied when a user signs up without a country code.
const DefaultDialCode = "91"

// User is a gym operator: either an Owner who controls gyms or a Manager
// granted access to some of them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	DialCode     string             `bson:"dialCode" json:"dialCode"`
	PhoneNumber  string             `bson:"phoneNumber" json:"phoneNumber"`
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Owner-specific ---
	OwnedGyms []primitive.ObjectID `bson:"ownedGyms,omitempty" json:"ownedGyms,omitempty"`

	// --- Manager-specific ---
	ManagedGyms []primitive.ObjectID `bson:"managedGyms,omitempty" json:"managedGyms,omitempty"`
	// Owner that created this manager.
	AssignedBy *primitive.ObjectID `bson:"assignedBy,omitempty" json:"assignedBy,omitempty"`
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// OwnsGym reports whether gymID is listed in the owner's gyms.
func (u *User) OwnsGym(gymID primitive.ObjectID) bool {
	for _, id := range u.OwnedGyms {
		if id == gymID {
			return true
		}
	}
	return false
}
