package report

import (
	"context"
	"time"

	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentOrderCount is how many orders the dashboard lists
const recentOrderCount = 5

// DashboardCounters are the headline numbers of the admin panel
type DashboardCounters struct {
	Products         int64 `json:"products"`
	ActiveProducts   int64 `json:"active_products"`
	LowStockProducts int64 `json:"low_stock_products"`
	Categories       int64 `json:"categories"`
	Customers        int64 `json:"customers"`
	PendingOrders    int64 `json:"pending_orders"`
	Users            int64 `json:"users"`
}

// RecentOrder is a compact order row shown on the dashboard
type RecentOrder struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Dashboard is the admin panel landing data
type Dashboard struct {
	Counters     DashboardCounters `json:"counters"`
	RecentOrders []RecentOrder     `json:"recent_orders"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// DashboardService computes the admin dashboard
type DashboardService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	customerRepo partner.CustomerRepository
	orderRepo    trade.OrderRepository
	userRepo     identity.UserRepository
	logger       *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	customerRepo partner.CustomerRepository,
	orderRepo trade.OrderRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// Get runs the dashboard queries concurrently
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	var (
		counters DashboardCounters
		recent   []trade.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counters.Products, err = s.productRepo.Count(gctx, emptyFilter())
		return err
	})
	g.Go(func() (err error) {
		f := emptyFilter()
		f.Filters["active"] = true
		counters.ActiveProducts, err = s.productRepo.Count(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		counters.LowStockProducts, err = s.productRepo.CountLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		counters.Categories, err = s.categoryRepo.Count(gctx, emptyFilter())
		return err
	})
	g.Go(func() (err error) {
		counters.Customers, err = s.customerRepo.Count(gctx, emptyFilter())
		return err
	})
	g.Go(func() (err error) {
		counters.PendingOrders, err = s.orderRepo.CountByStatus(gctx, trade.OrderStatusPending)
		return err
	})
	g.Go(func() (err error) {
		counters.Users, err = s.userRepo.Count(gctx, emptyFilter())
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.orderRepo.FindAll(gctx, shared.Filter{
			Page:     1,
			PageSize: recentOrderCount,
			OrderBy:  "created_at",
			OrderDir: "desc",
			Filters:  map[string]interface{}{},
		})
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard", zap.Error(err))
		return nil, err
	}

	rows := make([]RecentOrder, len(recent))
	for i, o := range recent {
		rows[i] = RecentOrder{
			ID:            o.ID.String(),
			OrderNumber:   o.OrderNumber,
			Status:        string(o.Status),
			PaymentStatus: string(o.PaymentStatus),
			Total:         o.Total,
			CreatedAt:     o.CreatedAt,
		}
	}
	return &Dashboard{
		Counters:     counters,
		RecentOrders: rows,
		GeneratedAt:  time.Now(),
	}, nil
}

func emptyFilter() shared.Filter {
	return shared.Filter{Filters: map[string]interface{}{}}
}
