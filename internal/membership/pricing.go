package membership

import (
	"errors"
	"fmt"

	"alcyxob/gym-manager/internal/domain"
)

var ErrInvalidPricing = errors.New("invalid pricing")

// Pricing is the resolved price of a membership term.
type Pricing struct {
	PlanPrice  domain.Money
	Discount   domain.Money
	FinalPrice domain.Money
	AmountPaid domain.Money
	// DueAmount is negative when the member paid more than the final price;
	// the surplus is kept as credit.
	DueAmount domain.Money
}

// ResolvePricing computes final price and due amount.
func ResolvePricing(planPrice, discount, amountCollected domain.Money) (Pricing, error) {
	switch {
	case planPrice < 0:
		return Pricing{}, fmt.Errorf("%w: plan price cannot be negative", ErrInvalidPricing)
	case discount < 0:
		return Pricing{}, fmt.Errorf("%w: discount cannot be negative", ErrInvalidPricing)
	case discount > planPrice:
		return Pricing{}, fmt.Errorf("%w: discount cannot exceed plan price", ErrInvalidPricing)
	case amountCollected < 0:
		return Pricing{}, fmt.Errorf("%w: amount collected cannot be negative", ErrInvalidPricing)
	}

	final := planPrice - discount
	return Pricing{
		PlanPrice:  planPrice,
		Discount:   discount,
		FinalPrice: final,
		AmountPaid: amountCollected,
		DueAmount:  final - amountCollected,
	}, nil
}

// Apply copies the pricing onto a member record.
func (p Pricing) Apply(m *domain.Member) {
	m.PlanPrice = p.PlanPrice
	m.Discount = p.Discount
	m.FinalPrice = p.FinalPrice
	m.AmountPaid = p.AmountPaid
	m.DueAmount = p.DueAmount
}
