package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckout(s OrderStore) (*CheckoutService, *recordingPublisher, *fakeIdempotency) {
	pub := &recordingPublisher{}
	idem := newFakeIdempotency()
	return NewCheckoutService(s, idem, pub, time.Hour), pub, idem
}

func TestPlaceOrderProfessionalIsPending(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	user := createUser(ctx, st, "buyer@example.com")
	svc, pub, _ := newCheckout(st)

	placed, err := svc.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:    user.ID,
		ProductID: "supportiq",
		Plan:      "professional",
		Method:    models.PaymentBankTransfer,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(299), placed.Order.Amount)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)
	assert.Equal(t, "Professional", placed.Order.Plan)
	assert.Equal(t, "Bank Transfer", placed.Order.PaymentMethod)
	assert.Equal(t, "SupportIQ", placed.Order.ProductName)
	assert.Equal(t, "/dashboard/orders/"+placed.Order.ID, placed.Next)
	require.Len(t, pub.created, 1)
	assert.Equal(t, "professional", pub.created[0].Plan)
}

func TestAnonymousCheckoutRedirectsToProductPage(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, _ := newCheckout(st)

	_, err := svc.StartCheckout(ctx, "", "mediscan-ai", "starter")
	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/products/mediscan-ai", redirect.Location)

	_, err = svc.PaymentOptions(ctx, "", "mediscan-ai", "starter")
	require.True(t, errors.As(err, &redirect))

	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "mediscan-ai", Plan: "starter", Method: models.PaymentCreditCard})
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/products/mediscan-ai", redirect.Location)
	assert.Empty(t, pub.created)
}

func TestUnknownProductRedirectsToCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCheckout(memstore.New())

	for _, id := range []string{"", "does-not-exist"} {
		_, err := svc.StartCheckout(ctx, "user-1", id, "")
		assert.ErrorIs(t, err, ErrProductNotFound)

		var redirect *RedirectError
		require.True(t, errors.As(err, &redirect))
		assert.Equal(t, "/products", redirect.Location)
		assert.Equal(t, "Product not found", redirect.Message)
	}
}

func TestAnonymousUnknownProductRedirectsToCatalog(t *testing.T) {
	svc, pub, _ := newCheckout(memstore.New())

	_, err := svc.StartCheckout(context.Background(), "", "does-not-exist", "starter")
	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/products", redirect.Location)
	assert.Equal(t, "product_not_found", redirect.Reason)
	assert.Empty(t, pub.created)
}

func TestStartCheckoutDefaultsToProfessional(t *testing.T) {
	svc, _, _ := newCheckout(memstore.New())

	view, err := svc.StartCheckout(context.Background(), "user-1", "mediscan-ai", "")
	require.NoError(t, err)
	assert.Equal(t, models.PlanProfessional, view.Plan.Key)
	assert.Equal(t, "/payment-method?product=mediscan-ai&plan=professional", view.Next)
	assert.Len(t, view.Plans, 3)
}

func TestPaymentOptionsListsMethods(t *testing.T) {
	svc, _, _ := newCheckout(memstore.New())

	view, err := svc.PaymentOptions(context.Background(), "user-1", "mediscan-ai", "Enterprise")
	require.NoError(t, err)
	assert.Equal(t, int64(999), view.Plan.Price)
	require.Len(t, view.PaymentMethods, 2)
	assert.Equal(t, "Credit Card", view.PaymentMethods[0].Label)
	assert.Equal(t, "Bank Transfer", view.PaymentMethods[1].Label)
}

func TestInvalidPlanAndMethod(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCheckout(memstore.New())

	_, err := svc.StartCheckout(ctx, "user-1", "mediscan-ai", "platinum")
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.PlaceOrder(ctx, PlaceOrderRequest{
		UserID: "user-1", ProductID: "mediscan-ai", Plan: "starter", Method: "paypal",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPlaceOrderIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	user := createUser(ctx, st, "idem@example.com")
	svc, pub, idem := newCheckout(st)

	req := PlaceOrderRequest{
		UserID:         user.ID,
		ProductID:      "mediscan-ai",
		Plan:           "starter",
		Method:         models.PaymentCreditCard,
		IdempotencyKey: "abc",
	}

	first, err := svc.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, first.Order.ID, idem.values[user.ID+":abc"])

	second, err := svc.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	// Falls back to the store when the cache has no entry
	delete(idem.values, user.ID+":abc")
	third, err := svc.PlaceOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Order.ID, third.Order.ID)

	orders, err := st.ListOrdersByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, pub.created, 1)
}

func TestPlaceOrderStoreFailure(t *testing.T) {
	svc, pub, _ := newCheckout(brokenOrders{memstore.New()})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID: "user-1", ProductID: "mediscan-ai", Plan: "starter", Method: models.PaymentCreditCard,
	})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, pub.created)
}
