package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoply-backend-go/internal/models"
	"shoply-backend-go/internal/validation"
)

// Not-found errors surfaced by the domain services.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrChatbotNotFound      = errors.New("chatbot not found")
)

// ValidationError carries field-level validation failures. It is computed
// before any remote call is attempted.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserService manages application user profiles.
type UserService interface {
	Create(ctx context.Context, userID, email, name string) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error)
}

// BillingService manages plans, subscriptions and invoices.
type BillingService interface {
	GetPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	CreateSubscription(ctx context.Context, userID, planID string, isYearly bool) (string, error)
	GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID string, updates map[string]interface{}) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (string, error)
	GetInvoices(ctx context.Context, userID string) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)
}

// CreateChatbotInput is the configuration supplied by the chatbot-creation
// flow. Zero-valued fields fall back to the documented defaults.
type CreateChatbotInput struct {
	Name              string
	Description       string
	Model             string
	Language          string
	Tone              string
	Personality       string
	MaxResponseLength int
	Temperature       *float64
}

// ChatbotService manages per-user chatbots.
type ChatbotService interface {
	Create(ctx context.Context, userID string, input CreateChatbotInput) (*models.Chatbot, error)
	ListByUser(ctx context.Context, userID string) ([]models.Chatbot, error)
	GetByID(ctx context.Context, chatbotID string) (*models.Chatbot, error)
	Update(ctx context.Context, chatbotID string, updates map[string]interface{}) (*models.Chatbot, error)
}
