package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

// Date is a calendar date sent as "YYYY-MM-DD". Full RFC 3339 timestamps
// are accepted too; their date in the sender's offset is kept.
type Date struct {
	time.Time
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// Ptr returns nil for an absent date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// --- Query helpers ---

// objectIDQuery reads a required ObjectID query parameter, writing a 400 on
// failure.
func objectIDQuery(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := c.Query(name)
	if raw == "" {
		abortWithError(c, http.StatusBadRequest, name+" is required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseObjectID parses an id taken from a request body.
func parseObjectID(c *gin.Context, name, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalObjectID parses an optional id; an empty string is nil.
func optionalObjectID(c *gin.Context, name, raw string) (*primitive.ObjectID, bool) {
	if raw == "" {
		return nil, true
	}
	id, ok := parseObjectID(c, name, raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortWithError(c, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// dateQuery parses an optional date query parameter. endOfDay moves a bare
// date to the start of the following day so the range includes it.
func dateQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, name+": "+err.Error())
		return nil, false
	}
	if endOfDay && len(raw) == len(dateLayout) {
		t = t.AddDate(0, 0, 1)
	}
	return &t, true
}

// bindJSON binds the body, writing a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

// --- Response DTOs ---

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	DialCode    string      `json:"dialCode,omitempty"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"isActive"`
	OwnedGyms   []string    `json:"ownedGyms,omitempty"`
	ManagedGyms []string    `json:"managedGyms,omitempty"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:          user.ID.Hex(),
		Name:        user.Name,
		Email:       user.Email,
		DialCode:    user.DialCode,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		IsActive:    user.IsActive,
		OwnedGyms:   hexIDs(user.OwnedGyms),
		ManagedGyms: hexIDs(user.ManagedGyms),
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
	}
}

// MemberResponse is a member with its current plan populated in place of
// the plan id.
type MemberResponse struct {
	*domain.Member
	CurrentPlan *domain.Plan `json:"currentPlan"`
	ImageURL    string       `json:"imageUrl,omitempty"`
}

func mapMember(m *service.MemberWithPlan) MemberResponse {
	if m == nil {
		return MemberResponse{}
	}
	return MemberResponse{Member: m.Member, CurrentPlan: m.Plan, ImageURL: m.ImageURL}
}

func mapMembers(ms []service.MemberWithPlan) []MemberResponse {
	out := make([]MemberResponse, len(ms))
	for i := range ms {
		out[i] = mapMember(&ms[i])
	}
	return out
}
