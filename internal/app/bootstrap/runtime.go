package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/clinic"
	appconfig "github.com/wolfman30/clinic-secretary/internal/config"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ConnectPostgresPool opens the pgx pool used by the repositories. An empty
// URL or a failed ping returns nil so callers can fall back to memory stores.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Warn("postgres pool unavailable", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// OpenSQLDB opens a database/sql handle through the pgx stdlib driver.
func OpenSQLDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: database url is required")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open sql db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping sql db: %w", err)
	}
	return db, nil
}

// ClinicDefaults overlays the env-configured identity on the default schedule.
func ClinicDefaults(cfg *appconfig.Config) *clinic.Config {
	out := clinic.DefaultConfig()
	if cfg == nil {
		return out
	}
	if cfg.ClinicName != "" {
		out.Name = cfg.ClinicName
	}
	if cfg.ClinicCountry != "" {
		out.Country = cfg.ClinicCountry
	}
	out.Timezone = cfg.ClinicTimezone
	out.Phone = cfg.ClinicPhone
	out.Address = cfg.ClinicAddress
	out.AdminEmails = cfg.AdminNotifyEmails
	return out
}

// BuildClinicStore returns the clinic config store. Without Redis the store
// serves the defaults and rejects updates.
func BuildClinicStore(redisClient *redis.Client, defaults *clinic.Config) *clinic.Store {
	return clinic.NewStore(redisClient, defaults)
}

// LoadCatalog reads services and specialists from Postgres, falling back to
// the built-in price list when the pool is nil or the tables are empty.
func LoadCatalog(ctx context.Context, pool *pgxpool.Pool, logger *logging.Logger) *catalog.Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		return catalog.Default()
	}
	cat, err := catalog.Load(ctx, catalog.NewPostgresRepository(pool))
	if err != nil {
		logger.Warn("catalog load failed; using built-in price list", "error", err)
		return catalog.Default()
	}
	if len(cat.Services()) == 0 {
		logger.Warn("catalog tables are empty; using built-in price list")
		return catalog.Default()
	}
	return cat
}
