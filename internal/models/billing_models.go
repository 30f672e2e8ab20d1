package models

import "time"

// Subscription status values. At most one subscription per user is "active"
// at a time; callers preserve that invariant by query convention.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Plan defines a pricing tier.
type Plan struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	Features       []string  `json:"features"`
	MaxProducts    int       `json:"maxProducts"` // -1 means unlimited
	TransactionFee float64   `json:"transactionFee"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Subscription links a user to a plan for a billing period.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PlanID    string    `json:"planId"`
	IsYearly  bool      `json:"isYearly"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Invoice is a billing record for a user.
type Invoice struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
