// Package events publishes membership domain events for downstream
// consumers such as WhatsApp or email reminder senders.
package events

import (
	"context"
	"time"

	"alcyxob/gym-manager/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Type string

const (
	MemberEnrolled  Type = "member.enrolled"
	MemberRenewed   Type = "member.renewed"
	PaymentRecorded Type = "payment.recorded"
)

// Event is the envelope written to the broker.
type Event struct {
	ID          string       `json:"id"`
	Type        Type         `json:"type"`
	GymID       string       `json:"gymId"`
	MemberID    string       `json:"memberId"`
	MemberName  string       `json:"memberName"`
	PhoneNumber string       `json:"phoneNumber,omitempty"`
	Amount      domain.Money `json:"amount"`
	DueAmount   domain.Money `json:"dueAmount"`
	EndDate     *time.Time   `json:"endDate,omitempty"`
	OccurredAt  time.Time    `json:"occurredAt"`
}

// NewMemberEvent builds an event describing member m.
func NewMemberEvent(t Type, m *domain.Member, amount domain.Money, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		GymID:       m.Gym.Hex(),
		MemberID:    m.MemberID,
		MemberName:  m.Name,
		PhoneNumber: m.PhoneNumber,
		Amount:      amount,
		DueAmount:   m.DueAmount,
		EndDate:     m.MembershipEndDate,
		OccurredAt:  at.UTC(),
	}
}

// Publisher delivers events. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger *zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("channel", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("gym", event.GymID).
		Str("member", event.MemberID).
		Msg("event")
	return nil
}
