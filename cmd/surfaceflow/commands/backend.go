package commands

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surfaceflow/internal/config"
	"surfaceflow/internal/repository/csvfile"
	"surfaceflow/internal/repository/postgresql"
	redisrepo "surfaceflow/internal/repository/redis"
	"surfaceflow/internal/service"
	"surfaceflow/internal/worker"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openLedger connects the configured ledger backend. The returned close
// function releases its connections and is never nil.
func openLedger(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Ledger, func(), error) {
	switch cfg.Ledger.Backend {
	case config.BackendPostgres:
		pool, err := postgresql.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "postgres %s", redactDSN(cfg.Postgres.DSN))
		}
		repo := postgresql.NewLedgerRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("ledger backend ready", zap.String("backend", cfg.Ledger.Backend), zap.String("dsn", redactDSN(cfg.Postgres.DSN)))
		return repo, pool.Close, nil

	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, errors.Wrapf(err, "redis %s", cfg.Redis.Addr)
		}
		log.Info("ledger backend ready", zap.String("backend", cfg.Ledger.Backend), zap.String("addr", cfg.Redis.Addr))
		return redisrepo.NewLedgerRepository(rdb, cfg.Redis.Prefix), func() { _ = rdb.Close() }, nil

	default:
		log.Info("ledger backend ready", zap.String("backend", cfg.Ledger.Backend), zap.String("dir", cfg.Ledger.Dir))
		return csvfile.NewLedgerRepository(cfg.Ledger.Dir), func() {}, nil
	}
}

// openQueue builds the automation queue. Both results are nil when the runner
// is disabled, so triggered automations stay running until cancelled.
func openQueue(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.AutomationQueue, worker.Source, func(), error) {
	if cfg.Automation.Workers == 0 {
		return nil, nil, func() {}, nil
	}
	if cfg.Automation.Queue != config.QueueRedis {
		q := worker.NewQueue(0)
		return q, q, func() {}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, errors.Wrapf(err, "redis %s", cfg.Redis.Addr)
	}
	q := worker.NewRedisQueue(rdb, cfg.Automation.QueueKey)
	// ids claimed by a previous run; ones the fresh registry doesn't know are
	// logged by the processor and acked
	if n, err := q.RequeueStale(ctx, 1000); err != nil {
		log.Warn("requeue stale automations", zap.Error(err))
	} else if n > 0 {
		log.Info("requeued stale automations", zap.Int64("count", n))
	}
	return q, q, func() { _ = rdb.Close() }, nil
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// redactDSN masks the password in a URL-style DSN: user:pass@ -> user:****@.
func redactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}
