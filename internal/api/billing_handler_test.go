package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply-backend-go/internal/core"
	"shoply-backend-go/internal/models"
)

type stubBillingService struct {
	plan     *models.Plan
	invoices []*models.Invoice
}

func (s *stubBillingService) GetPlans(ctx context.Context) ([]models.Plan, error) { return nil, nil }

func (s *stubBillingService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	if s.plan == nil || s.plan.ID != planID {
		return nil, core.ErrPlanNotFound
	}
	return s.plan, nil
}

func (s *stubBillingService) CreateSubscription(ctx context.Context, userID, planID string, isYearly bool) (string, error) {
	return "sub-1", nil
}

func (s *stubBillingService) GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return nil, nil
}

func (s *stubBillingService) UpdateSubscription(ctx context.Context, subscriptionID string, updates map[string]interface{}) error {
	return nil
}

func (s *stubBillingService) CreateInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	s.invoices = append(s.invoices, invoice)
	return "inv-1", nil
}

func (s *stubBillingService) GetInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	return nil, nil
}

func (s *stubBillingService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return nil, core.ErrInvoiceNotFound
}

func postSubscription(t *testing.T, billing *stubBillingService, req CreateSubscriptionRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewBillingHandler(billing, zap.NewNop())

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userID", "uid-1")
	handler.CreateSubscription(c)
	return w
}

func TestCreateSubscriptionMonthlyInvoiceAmount(t *testing.T) {
	billing := &stubBillingService{plan: &models.Plan{ID: "starter", Name: "Starter", Price: 29}}

	w := postSubscription(t, billing, CreateSubscriptionRequest{PlanID: "starter"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, billing.invoices, 1)
	assert.Equal(t, 29.0, billing.invoices[0].Amount)
	assert.Equal(t, "uid-1", billing.invoices[0].UserID)
	assert.Equal(t, "paid", billing.invoices[0].Status)
}

func TestCreateSubscriptionYearlyInvoiceHasDiscount(t *testing.T) {
	billing := &stubBillingService{plan: &models.Plan{ID: "pro", Name: "Pro", Price: 79}}

	w := postSubscription(t, billing, CreateSubscriptionRequest{PlanID: "pro", IsYearly: true})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, billing.invoices, 1)
	// Ten months' price less 20%: 79 * 10 * 0.8.
	assert.InDelta(t, 632.0, billing.invoices[0].Amount, 0.001)
}

func TestCreateSubscriptionFreePlanSkipsInvoice(t *testing.T) {
	billing := &stubBillingService{plan: &models.Plan{ID: "free", Name: "Free", Price: 0}}

	w := postSubscription(t, billing, CreateSubscriptionRequest{PlanID: "free"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, billing.invoices)
}
