package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shoply-backend-go/internal/db"
)

func TestSeedPlansIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, SeedPlans(ctx, f.manager, zap.NewNop()))
	assert.Equal(t, 4, f.store.Len(db.PlansCollection))

	// A rerun must not duplicate or overwrite.
	require.NoError(t, SeedPlans(ctx, f.manager, zap.NewNop()))
	assert.Equal(t, 4, f.store.Len(db.PlansCollection))

	svc := newBillingService(f)
	plans, err := svc.GetPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, "free", plans[0].ID)
	assert.Equal(t, 0.0, plans[0].Price)
	assert.Equal(t, "enterprise", plans[3].ID)
	assert.Equal(t, -1, plans[3].MaxProducts)
}

func TestSeedPlansMatchPricingPage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, SeedPlans(ctx, f.manager, zap.NewNop()))

	plans, err := newBillingService(f).GetPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 4)

	free := plans[0]
	assert.Equal(t, []string{"Sell up to 10 products", "Basic AI chat", "3% transaction fee"}, free.Features)
	assert.Equal(t, 10, free.MaxProducts)
	assert.Equal(t, 3.0, free.TransactionFee)

	// Every paid tier is uncapped on products.
	fees := map[string]float64{"starter": 2, "pro": 1, "enterprise": 0}
	for _, plan := range plans[1:] {
		assert.Equal(t, -1, plan.MaxProducts, plan.ID)
		assert.Equal(t, fees[plan.ID], plan.TransactionFee, plan.ID)
	}
	assert.Equal(t, []string{"Custom AI models", "API access", "0% transaction fee", "Dedicated support"}, plans[3].Features)
}
