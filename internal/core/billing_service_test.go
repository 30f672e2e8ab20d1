package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/models"
)

func newBillingService(f *serviceFixture) *billingService {
	svc := NewBillingService(f.manager, zap.NewNop()).(*billingService)
	svc.now = f.clock.Now
	return svc
}

func TestGetPlansReturnsActiveSortedByPrice(t *testing.T) {
	f := newServiceFixture(t)
	f.seedPlan("pro", 79, true)
	f.seedPlan("free", 0, true)
	f.seedPlan("legacy", 199, false)
	f.seedPlan("starter", 29, true)

	svc := newBillingService(f)
	plans, err := svc.GetPlans(context.Background())
	require.NoError(t, err)

	require.Len(t, plans, 3)
	assert.Equal(t, []float64{0, 29, 79}, []float64{plans[0].Price, plans[1].Price, plans[2].Price})
}

func TestGetPlanNotFound(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	_, err := svc.GetPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCreateSubscriptionMonthlyPeriod(t *testing.T) {
	f := newServiceFixture(t)
	f.seedPlan("starter", 29, true)
	svc := newBillingService(f)

	id, err := svc.CreateSubscription(context.Background(), "u1", "starter", false)
	require.NoError(t, err)

	doc, ok := f.store.Doc(db.SubscriptionsCollection, id)
	require.True(t, ok)

	var sub models.Subscription
	require.NoError(t, models.FromDoc(doc, &sub))
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.False(t, sub.IsYearly)
	assert.Equal(t, sub.StartDate.AddDate(0, 1, 0), sub.EndDate)
}

func TestCreateSubscriptionYearlyPeriod(t *testing.T) {
	f := newServiceFixture(t)
	f.seedPlan("pro", 79, true)
	svc := newBillingService(f)

	id, err := svc.CreateSubscription(context.Background(), "u1", "pro", true)
	require.NoError(t, err)

	doc, ok := f.store.Doc(db.SubscriptionsCollection, id)
	require.True(t, ok)

	var sub models.Subscription
	require.NoError(t, models.FromDoc(doc, &sub))
	assert.True(t, sub.IsYearly)
	assert.Equal(t, sub.StartDate.AddDate(1, 0, 0), sub.EndDate)
}

func TestCreateSubscriptionUnknownPlan(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	_, err := svc.CreateSubscription(context.Background(), "u1", "missing", false)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetActiveSubscriptionPicksLatestActive(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	f.store.Seed(db.SubscriptionsCollection, "old", map[string]interface{}{
		"userId":    "u1",
		"planId":    "free",
		"status":    models.SubscriptionStatusExpired,
		"createdAt": "2024-01-01T00:00:00Z",
	})
	f.store.Seed(db.SubscriptionsCollection, "previous", map[string]interface{}{
		"userId":    "u1",
		"planId":    "starter",
		"status":    models.SubscriptionStatusActive,
		"createdAt": "2025-01-01T00:00:00.500Z",
	})
	f.store.Seed(db.SubscriptionsCollection, "current", map[string]interface{}{
		"userId":    "u1",
		"planId":    "pro",
		"status":    models.SubscriptionStatusActive,
		"createdAt": "2025-01-01T00:00:01Z",
	})
	f.store.Seed(db.SubscriptionsCollection, "other-user", map[string]interface{}{
		"userId":    "u2",
		"planId":    "pro",
		"status":    models.SubscriptionStatusActive,
		"createdAt": "2025-06-01T00:00:00Z",
	})

	sub, err := svc.GetActiveSubscription(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "current", sub.ID)
}

func TestGetActiveSubscriptionNone(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	sub, err := svc.GetActiveSubscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestUpdateSubscriptionRejectsUnknownStatus(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	err := svc.UpdateSubscription(context.Background(), "s1", map[string]interface{}{"status": "paused"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "status")
}

func TestUpdateSubscriptionCancel(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	f.store.Seed(db.SubscriptionsCollection, "s1", map[string]interface{}{
		"userId": "u1",
		"status": models.SubscriptionStatusActive,
	})

	err := svc.UpdateSubscription(context.Background(), "s1", map[string]interface{}{
		"status": models.SubscriptionStatusCancelled,
	})
	require.NoError(t, err)

	doc, ok := f.store.Doc(db.SubscriptionsCollection, "s1")
	require.True(t, ok)
	assert.Equal(t, models.SubscriptionStatusCancelled, doc["status"])
}

func TestCreateInvoiceAndListNewestFirst(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)
	ctx := context.Background()

	for i, date := range []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := svc.CreateInvoice(ctx, &models.Invoice{
			UserID:        "u1",
			InvoiceNumber: []string{"INV-1", "INV-2", "INV-3"}[i],
			Date:          date,
			Amount:        29,
			Status:        "paid",
		})
		require.NoError(t, err)
	}

	invoices, err := svc.GetInvoices(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "INV-2", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-3", invoices[1].InvoiceNumber)
	assert.Equal(t, "INV-1", invoices[2].InvoiceNumber)
}

func TestCreateInvoiceRequiresUserAndNumber(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	_, err := svc.CreateInvoice(context.Background(), &models.Invoice{UserID: "u1"})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGetInvoiceNotFound(t *testing.T) {
	f := newServiceFixture(t)
	svc := newBillingService(f)

	_, err := svc.GetInvoice(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
