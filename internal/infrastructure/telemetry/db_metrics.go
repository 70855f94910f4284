package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled bool
	// SlowQueryThreshold marks queries counted in db_slow_query_total
	SlowQueryThreshold time.Duration
	// PoolStatsInterval is how often connection pool stats are sampled
	PoolStatsInterval time.Duration
}

// DBMetrics records query latency and connection pool usage
type DBMetrics struct {
	poolConnections    *Gauge
	poolConnectionsMax *Gauge
	queryTotal         *Counter
	queryDuration      *Histogram
	slowQueryTotal     *Counter

	config   DBMetricsConfig
	logger   *zap.Logger
	sqlDB    *sql.DB
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDBMetrics creates the database instruments on meter
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, &MetricsError{Op: "NewDBMetrics", Err: "meter cannot be nil"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}

	m := &DBMetrics{config: cfg, logger: logger, sqlDB: sqlDB, stopCh: make(chan struct{})}
	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections",
		"Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if m.poolConnectionsMax, err = NewGauge(meter, "db_pool_connections_max",
		"Maximum open connections allowed", "{connection}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total",
		"Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total",
		"Queries slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}
	return m, nil
}

// StartPoolStatsCollection samples sql.DB pool stats until Stop or ctx ends
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	if m.sqlDB == nil {
		m.logger.Warn("Cannot start pool stats collection: no sql.DB")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.collectPoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	m.logger.Info("Started database pool stats collection",
		zap.Duration("interval", m.config.PoolStatsInterval))
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

// RecordQuery records one finished query
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "OTHER"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin is a GORM plugin feeding DBMetrics
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

// NewDBMetricsPlugin creates a new GORM plugin for database metrics.
func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

// Name returns the plugin name.
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

type dbMetricsContextKey struct{}

// Initialize registers timing callbacks around every GORM processor
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	start := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, dbMetricsContextKey{}, time.Now())
	}
	finish := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			began, ok := ctx.Value(dbMetricsContextKey{}).(time.Time)
			if !ok {
				return
			}
			op := operation
			if op == "" {
				op = detectOperationType(tx.Statement.SQL.String())
			}
			p.metrics.RecordQuery(ctx, op, tx.Statement.Table, time.Since(began))
		}
	}

	cb := db.Callback()
	hooks := []struct {
		name      string
		operation string
		before    func(string) gormRegistrar
		after     func(string) gormRegistrar
	}{
		{"create", "INSERT", func(n string) gormRegistrar { return cb.Create().Before(n) }, func(n string) gormRegistrar { return cb.Create().After(n) }},
		{"query", "SELECT", func(n string) gormRegistrar { return cb.Query().Before(n) }, func(n string) gormRegistrar { return cb.Query().After(n) }},
		{"update", "UPDATE", func(n string) gormRegistrar { return cb.Update().Before(n) }, func(n string) gormRegistrar { return cb.Update().After(n) }},
		{"delete", "DELETE", func(n string) gormRegistrar { return cb.Delete().Before(n) }, func(n string) gormRegistrar { return cb.Delete().After(n) }},
		{"row", "", func(n string) gormRegistrar { return cb.Row().Before(n) }, func(n string) gormRegistrar { return cb.Row().After(n) }},
		{"raw", "", func(n string) gormRegistrar { return cb.Raw().Before(n) }, func(n string) gormRegistrar { return cb.Raw().After(n) }},
	}
	for _, h := range hooks {
		processor := "gorm:" + h.name
		if err := h.before(processor).Register("db_metrics:before_"+h.name, start); err != nil {
			return err
		}
		if err := h.after(processor).Register("db_metrics:after_"+h.name, finish(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

// gormRegistrar is the callback builder returned by Before and After
type gormRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func detectOperationType(query string) string {
	query = strings.ToUpper(strings.TrimSpace(query))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(query, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs the metrics plugin on db. It returns nil when
// metrics are disabled; otherwise the caller owns Stop.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || mp == nil || !mp.IsEnabled() {
		return nil, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics, err := NewDBMetrics(mp.Meter("db.client"), sqlDB, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(metrics)); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Database metrics registered",
			zap.Duration("slow_query_threshold", metrics.config.SlowQueryThreshold),
			zap.Duration("pool_stats_interval", metrics.config.PoolStatsInterval))
	}
	return metrics, nil
}
