package report

import (
	"context"
	"testing"

	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/persistence"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestDashboardService_Get(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	users := persistence.NewGormUserRepository(db)

	category, err := catalog.NewCategory("Planchas", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, category))

	for code, stock := range map[string]int{"PL-304": 2, "PL-316": 10, "PL-430": 5} {
		p, err := catalog.NewProduct(code, "Plancha "+code, category.ID, catalog.SteelTypeStainless, decimal.NewFromInt(10000))
		require.NoError(t, err)
		require.NoError(t, p.SetStock(stock, catalog.DefaultMinimumStock))
		if code == "PL-430" {
			p.SetActive(false)
		}
		require.NoError(t, products.Save(ctx, p))
	}

	customer, err := partner.NewCustomer(partner.CustomerTypeIndividual, "Ana", "Rojas", "12345678-5", "ana@aceros.cl")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	for _, number := range []string{"POZ20240501001", "POZ20240501002"} {
		order, err := trade.NewQuote(number, customer.ID)
		require.NoError(t, err)
		require.NoError(t, orders.Save(ctx, order))
	}

	user, err := identity.NewUser("admin", "admin@pozinox.cl", "acero2024", "", "")
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, user))

	svc := NewDashboardService(products, categories, customers, orders, users, nil)
	dashboard, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, DashboardCounters{
		Products:         3,
		ActiveProducts:   2,
		LowStockProducts: 1,
		Categories:       1,
		Customers:        1,
		PendingOrders:    2,
		Users:            1,
	}, dashboard.Counters)
	require.Len(t, dashboard.RecentOrders, 2)
	assert.Equal(t, "pending", dashboard.RecentOrders[0].Status)
}
