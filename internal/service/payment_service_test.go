package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(st OrderStore) (*PaymentService, *recordingPublisher, *fakeLocker) {
	pub := &recordingPublisher{}
	locker := newFakeLocker()
	return NewPaymentService(st, locker, pub, 30*time.Second, 800*time.Millisecond), pub, locker
}

func seedOrder(t *testing.T, st *memstore.Store, userID string, method models.PaymentMethod) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        userID,
		ProductID:     "mediscan-ai",
		ProductName:   "MediScan AI",
		Plan:          "Starter",
		Amount:        99,
		PaymentMethod: method.Label(),
		Status:        models.OrderStatusPending,
	}
	require.NoError(t, st.CreateOrder(context.Background(), order))
	return order
}

func TestPayOrderChangesOnlyStatus(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, locker := newPayment(st)
	before := seedOrder(t, st, "owner", models.PaymentCreditCard)

	result, err := svc.PayOrder(ctx, "owner", before.ID)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, "/dashboard/orders", result.Next)
	assert.Equal(t, 800*time.Millisecond, result.RedirectAfter)

	after := result.Order
	assert.Equal(t, models.OrderStatusCompleted, after.Status)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.UserID, after.UserID)
	assert.Equal(t, before.ProductID, after.ProductID)
	assert.Equal(t, before.ProductName, after.ProductName)
	assert.Equal(t, before.Plan, after.Plan)
	assert.Equal(t, before.Amount, after.Amount)
	assert.Equal(t, before.PaymentMethod, after.PaymentMethod)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	require.Len(t, pub.paid, 1)
	assert.Equal(t, before.ID, pub.paid[0].OrderID)
	assert.Empty(t, locker.held)
}

func TestForeignOrderIsNotFound(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, _ := newPayment(st)
	order := seedOrder(t, st, "owner", models.PaymentCreditCard)

	_, err := svc.GetOrder(ctx, "intruder", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.PayOrder(ctx, "intruder", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GetOrder(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := st.GetOrderForUser(ctx, order.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	assert.Empty(t, pub.paid)
}

func TestRepeatPayIsNoop(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, _ := newPayment(st)
	order := seedOrder(t, st, "owner", models.PaymentBankTransfer)

	_, err := svc.PayOrder(ctx, "owner", order.ID)
	require.NoError(t, err)

	again, err := svc.PayOrder(ctx, "owner", order.ID)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, models.OrderStatusCompleted, again.Order.Status)
	assert.Len(t, pub.paid, 1)
}

func TestPayOrderWhileLocked(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, locker := newPayment(st)
	order := seedOrder(t, st, "owner", models.PaymentCreditCard)

	_, ok, err := locker.AcquireLock(ctx, "order-pay:"+order.ID, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.PayOrder(ctx, "owner", order.ID)
	assert.ErrorIs(t, err, ErrPaymentInProgress)
	assert.Empty(t, pub.paid)
}

func TestForeignPayWhileLockedIsNotFound(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, pub, locker := newPayment(st)
	order := seedOrder(t, st, "owner", models.PaymentCreditCard)

	_, ok, err := locker.AcquireLock(ctx, "order-pay:"+order.ID, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.PayOrder(ctx, "intruder", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NotErrorIs(t, err, ErrPaymentInProgress)

	_, err = svc.PayOrder(ctx, "intruder", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, pub.paid)
}

func TestConcurrentPayPublishesOnce(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	pub := &recordingPublisher{}
	svc := NewPaymentService(st, nil, pub, time.Second, 0)
	order := seedOrder(t, st, "owner", models.PaymentCreditCard)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PayOrder(ctx, "owner", order.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, pub.paid, 1)
}

func TestPayOrderWithoutLocker(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	pub := &recordingPublisher{}
	svc := NewPaymentService(st, nil, pub, time.Second, 0)
	order := seedOrder(t, st, "owner", models.PaymentCreditCard)

	result, err := svc.PayOrder(ctx, "owner", order.ID)
	require.NoError(t, err)
	assert.True(t, result.Changed)
}

func TestPaymentInstructions(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc, _, _ := newPayment(st)

	card := seedOrder(t, st, "owner", models.PaymentCreditCard)
	detail, err := svc.GetOrder(ctx, "owner", card.ID)
	require.NoError(t, err)
	assert.True(t, detail.Payable)
	assert.Equal(t, "Not Paid", detail.StatusLabel)
	require.NotNil(t, detail.Instructions)
	assert.Equal(t, models.PaymentCreditCard, detail.Instructions.Method)
	assert.Len(t, detail.Instructions.CardFields, 3)
	assert.Nil(t, detail.Instructions.Bank)

	bank := seedOrder(t, st, "owner", models.PaymentBankTransfer)
	detail, err = svc.GetOrder(ctx, "owner", bank.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Instructions.Bank)
	assert.Equal(t, "CDM Bank", detail.Instructions.Bank.BankName)
	assert.Equal(t, "Mark as Paid", detail.Instructions.ActionLabel)

	_, err = svc.PayOrder(ctx, "owner", bank.ID)
	require.NoError(t, err)
	detail, err = svc.GetOrder(ctx, "owner", bank.ID)
	require.NoError(t, err)
	assert.False(t, detail.Payable)
	assert.Nil(t, detail.Instructions)
	assert.Equal(t, "Paid", detail.StatusLabel)
}

func TestCheckoutToPaidOrderFlow(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	user := createUser(ctx, st, "flow@example.com")

	pub := &recordingPublisher{}
	checkout := NewCheckoutService(st, nil, pub, time.Hour)
	payments := NewPaymentService(st, newFakeLocker(), pub, time.Second, 800*time.Millisecond)
	orders := NewOrderService(st, st)

	view, err := checkout.StartCheckout(ctx, user.ID, "mediscan-ai", "starter")
	require.NoError(t, err)
	assert.Equal(t, "/payment-method?product=mediscan-ai&plan=starter", view.Next)

	placed, err := checkout.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:    user.ID,
		ProductID: "mediscan-ai",
		Plan:      "starter",
		Method:    models.PaymentCreditCard,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), placed.Order.Amount)
	assert.Equal(t, "Credit Card", placed.Order.PaymentMethod)

	paid, err := payments.PayOrder(ctx, user.ID, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, paid.Order.Status)

	list, err := orders.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, placed.Order.ID, list.Orders[0].ID)
	assert.Equal(t, "Paid", list.Orders[0].StatusLabel)
	assert.Equal(t, "paid", list.Orders[0].Badge)
}
