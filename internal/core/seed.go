package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/models"
	"shoply-backend-go/internal/persistence"
)

// defaultPlans are the pricing tiers shown on the marketing site.
var defaultPlans = []models.Plan{
	{
		ID:    "free",
		Name:  "Free",
		Price: 0,
		Features: []string{
			"Sell up to 10 products",
			"Basic AI chat",
			"3% transaction fee",
		},
		MaxProducts:    10,
		TransactionFee: 3,
		IsActive:       true,
	},
	{
		ID:    "starter",
		Name:  "Starter",
		Price: 29,
		Features: []string{
			"Unlimited products",
			"AI recommendations",
			"Custom branding",
			"2% transaction fee",
		},
		MaxProducts:    -1,
		TransactionFee: 2,
		IsActive:       true,
	},
	{
		ID:    "pro",
		Name:  "Pro",
		Price: 79,
		Features: []string{
			"Abandoned cart recovery",
			"Multi-language support",
			"Analytics dashboard",
			"1% transaction fee",
		},
		MaxProducts:    -1,
		TransactionFee: 1,
		IsActive:       true,
	},
	{
		ID:    "enterprise",
		Name:  "Enterprise",
		Price: 199,
		Features: []string{
			"Custom AI models",
			"API access",
			"0% transaction fee",
			"Dedicated support",
		},
		MaxProducts:    -1,
		TransactionFee: 0,
		IsActive:       true,
	},
}

// SeedPlans writes the default pricing tiers, skipping ids that already
// exist so reruns are safe.
func SeedPlans(ctx context.Context, store *persistence.Manager, logger *zap.Logger) error {
	for _, plan := range defaultPlans {
		existing, err := store.Get(ctx, db.PlansCollection, plan.ID, persistence.Options{ForceFetch: true})
		if err != nil {
			return fmt.Errorf("failed to check plan %q: %w", plan.ID, err)
		}
		if existing != nil {
			logger.Info("plan already seeded", zap.String("planID", plan.ID))
			continue
		}

		doc, err := models.ToDoc(plan)
		if err != nil {
			return err
		}
		if _, err := store.Create(ctx, db.PlansCollection, doc); err != nil {
			return fmt.Errorf("failed to seed plan %q: %w", plan.ID, err)
		}
		logger.Info("plan seeded", zap.String("planID", plan.ID))
	}
	return nil
}
