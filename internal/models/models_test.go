package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusDisplay(t *testing.T) {
	cases := []struct {
		status OrderStatus
		label  string
		badge  string
	}{
		{OrderStatusCompleted, "Paid", "paid"},
		{OrderStatus("paid"), "Paid", "paid"},
		{OrderStatusPending, "Not Paid", "pending"},
		{OrderStatusFailed, "Failed", "failed"},
		{OrderStatus(""), "Not Paid", "pending"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.status.Display(), string(tc.status))
		assert.Equal(t, tc.badge, tc.status.Badge(), string(tc.status))
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusFailed.Terminal())
}

func TestLookupPlan(t *testing.T) {
	tier, ok := LookupPlan("professional")
	assert.True(t, ok)
	assert.Equal(t, "Professional", tier.Name)
	assert.Equal(t, int64(299), tier.Price)

	tier, ok = LookupPlan(" Starter ")
	assert.True(t, ok)
	assert.Equal(t, int64(99), tier.Price)

	_, ok = LookupPlan("platinum")
	assert.False(t, ok)
}

func TestPlanTiersIsACopy(t *testing.T) {
	tiers := PlanTiers()
	tiers[0].Price = 1

	again := PlanTiers()
	assert.Equal(t, int64(99), again[0].Price)
	assert.Len(t, again, 3)
}

func TestPaymentMethodLabels(t *testing.T) {
	assert.Equal(t, "Credit Card", PaymentCreditCard.Label())
	assert.Equal(t, "Bank Transfer", PaymentBankTransfer.Label())
	assert.True(t, PaymentCreditCard.Valid())
	assert.False(t, PaymentMethod("paypal").Valid())

	assert.Equal(t, PaymentCreditCard, PaymentMethodFromLabel("Credit Card"))
	assert.Equal(t, PaymentBankTransfer, PaymentMethodFromLabel("Bank Transfer"))
}
