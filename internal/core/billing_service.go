package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/models"
	"shoply-backend-go/internal/persistence"
)

type billingService struct {
	store  *persistence.Manager
	logger *zap.Logger
	now    func() time.Time
}

// NewBillingService creates the plans/subscriptions/invoices service over
// the persistence manager.
func NewBillingService(store *persistence.Manager, logger *zap.Logger) BillingService {
	return &billingService{store: store, logger: logger, now: time.Now}
}

// GetPlans lists the active pricing tiers, cheapest first.
func (s *billingService) GetPlans(ctx context.Context) ([]models.Plan, error) {
	docs, err := s.store.Query(ctx, db.PlansCollection, db.Query{
		Wheres:  []db.Where{{Field: "isActive", Op: "==", Value: true}},
		OrderBy: "price",
	}, persistence.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return models.FromDocs[models.Plan](docs)
}

// GetPlan fetches one plan by id, active or not.
func (s *billingService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	doc, err := s.store.Get(ctx, db.PlansCollection, planID, persistence.Options{})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrPlanNotFound
	}
	var plan models.Plan
	if err := models.FromDoc(doc, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateSubscription starts a subscription on the given plan. The billing
// period runs from now for one month or one year, and the subscription is
// created active. Returns the new subscription id.
func (s *billingService) CreateSubscription(ctx context.Context, userID, planID string, isYearly bool) (string, error) {
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return "", err
	}

	start := s.now().UTC()
	end := start.AddDate(0, 1, 0)
	if isYearly {
		end = start.AddDate(1, 0, 0)
	}

	sub := &models.Subscription{
		UserID:    userID,
		PlanID:    planID,
		IsYearly:  isYearly,
		StartDate: start,
		EndDate:   end,
		Status:    models.SubscriptionStatusActive,
	}
	doc, err := models.ToDoc(sub)
	if err != nil {
		return "", err
	}
	delete(doc, "id")

	id, err := s.store.Create(ctx, db.SubscriptionsCollection, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.Info("subscription created",
		zap.String("userID", userID), zap.String("planID", planID), zap.Bool("isYearly", isYearly))
	return id, nil
}

// GetActiveSubscription returns the user's most recent active subscription,
// or nil when there is none.
func (s *billingService) GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	docs, err := s.store.Query(ctx, db.SubscriptionsCollection, db.Query{
		Wheres: []db.Where{
			{Field: "userId", Op: "==", Value: userID},
			{Field: "status", Op: "==", Value: models.SubscriptionStatusActive},
		},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   1,
	}, persistence.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var sub models.Subscription
	if err := models.FromDoc(docs[0], &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription merges fields into a subscription, e.g. a status change
// on cancellation.
func (s *billingService) UpdateSubscription(ctx context.Context, subscriptionID string, updates map[string]interface{}) error {
	allowed := map[string]bool{"status": true, "planId": true, "isYearly": true, "endDate": true}
	partial := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		if allowed[field] {
			partial[field] = value
		}
	}
	if status, ok := partial["status"].(string); ok {
		switch status {
		case models.SubscriptionStatusActive, models.SubscriptionStatusCancelled, models.SubscriptionStatusExpired:
		default:
			return &ValidationError{Fields: map[string]string{"status": "Invalid subscription status"}}
		}
	}
	if len(partial) == 0 {
		return nil
	}

	doc, err := s.store.Get(ctx, db.SubscriptionsCollection, subscriptionID, persistence.Options{})
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrSubscriptionNotFound
	}

	if err := s.store.Update(ctx, db.SubscriptionsCollection, subscriptionID, partial); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	s.logger.Info("subscription updated", zap.String("subscriptionID", subscriptionID))
	return nil
}

// CreateInvoice records a billing document for a user. Returns the new
// invoice id.
func (s *billingService) CreateInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	if invoice.UserID == "" || invoice.InvoiceNumber == "" {
		return "", &ValidationError{Fields: map[string]string{
			"invoice": "userId and invoiceNumber are required",
		}}
	}
	if invoice.Date.IsZero() {
		invoice.Date = s.now().UTC()
	}

	doc, err := models.ToDoc(invoice)
	if err != nil {
		return "", err
	}
	delete(doc, "id")

	id, err := s.store.Create(ctx, db.InvoicesCollection, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create invoice: %w", err)
	}
	return id, nil
}

// GetInvoices lists a user's invoices, newest first.
func (s *billingService) GetInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	docs, err := s.store.Query(ctx, db.InvoicesCollection, db.Query{
		Wheres:  []db.Where{{Field: "userId", Op: "==", Value: userID}},
		OrderBy: "date",
		Desc:    true,
	}, persistence.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return models.FromDocs[models.Invoice](docs)
}

// GetInvoice fetches one invoice by id.
func (s *billingService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	doc, err := s.store.Get(ctx, db.InvoicesCollection, invoiceID, persistence.Options{})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrInvoiceNotFound
	}
	var inv models.Invoice
	if err := models.FromDoc(doc, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
