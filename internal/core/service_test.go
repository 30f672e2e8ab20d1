package core

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"shoply-backend-go/internal/cache"
	"shoply-backend-go/internal/db"
	"shoply-backend-go/internal/persistence"
	"shoply-backend-go/internal/testfixtures"
)

type serviceFixture struct {
	store   *testfixtures.Store
	monitor *db.Monitor
	clock   *testfixtures.Clock
	manager *persistence.Manager
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	store := testfixtures.NewStore()
	monitor := db.NewMonitor(store, db.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 1.5}, zap.NewNop())
	clock := testfixtures.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	memCache := cache.NewMemoryStore().WithClock(clock.Now)

	seq := 0
	manager := persistence.NewManager(store, monitor, memCache, 5*time.Minute, zap.NewNop()).
		WithClock(clock.Now).
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("generated-%d", seq)
		})

	return &serviceFixture{store: store, monitor: monitor, clock: clock, manager: manager}
}

func (f *serviceFixture) seedPlan(id string, price float64, active bool) {
	f.store.Seed(db.PlansCollection, id, map[string]interface{}{
		"name":           id,
		"price":          price,
		"features":       []interface{}{"feature"},
		"maxProducts":    100.0,
		"transactionFee": 2.0,
		"isActive":       active,
	})
}
