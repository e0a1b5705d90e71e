package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "whole units", input: "1500", want: 150000},
		{name: "two decimals", input: "1499.50", want: 149950},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "too precise", input: "10.005", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "upper bound", input: "100000000000", want: MaxMoney},
		{name: "negative bound", input: "-100000000000", want: -MaxMoney},
		{name: "above bound", input: "100000000000.01", wantErr: true},
		{name: "wraps int64", input: "100000000000000000", wantErr: true},
		{name: "exponent", input: "1e20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	var payload struct {
		Price    Money `json:"price"`
		Discount Money `json:"discount"`
	}
	err := json.Unmarshal([]byte(`{"price": 6000, "discount": "500.25"}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, NewMoney(6000), payload.Price)
	assert.Equal(t, Money(50025), payload.Discount)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price": 6000.00, "discount": 500.25}`, string(out))
}

func TestMoney_UnmarshalOutOfRange(t *testing.T) {
	for _, in := range []string{`1e20`, `100000000000000000`, `"-92233720368547758.08"`} {
		var m Money
		err := json.Unmarshal([]byte(in), &m)
		assert.ErrorIs(t, err, ErrMoneyOutOfRange, in)
		assert.Zero(t, m, in)
	}
}

func TestPlanLimits(t *testing.T) {
	trial := LimitsFor(SaaSPlanTrial)
	assert.True(t, trial.CanAddMember(9))
	assert.False(t, trial.CanAddMember(10))
	assert.False(t, trial.CanAddStaff(0))

	premium := LimitsFor(SaaSPlanPremium)
	assert.True(t, premium.CanAddMember(100000))
	assert.True(t, premium.CanAddGym(50))

	assert.Equal(t, trial, LimitsFor("enterprise"))
}

func TestGym_EffectiveTier(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	active := Gym{Subscription: GymSubscription{Plan: SaaSPlanPro, Status: SubscriptionActive, EndDate: &future}}
	assert.Equal(t, SaaSPlanPro, active.EffectiveTier(now))

	lapsed := Gym{Subscription: GymSubscription{Plan: SaaSPlanPro, Status: SubscriptionActive, EndDate: &past}}
	assert.Equal(t, SaaSPlanTrial, lapsed.EffectiveTier(now))

	trial := Gym{Subscription: GymSubscription{Status: SubscriptionTrial}}
	assert.Equal(t, SaaSPlanTrial, trial.EffectiveTier(now))
}

func TestSaaSPrice(t *testing.T) {
	p, ok := SaaSPrice(SaaSPlanPro, BillingYearly)
	require.True(t, ok)
	assert.Equal(t, NewMoney(14990), p)

	_, ok = SaaSPrice(SaaSPlanTrial, BillingMonthly)
	assert.False(t, ok)
}
