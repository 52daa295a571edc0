package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"surfaceflow/internal/config"
	"surfaceflow/internal/fixture"
	"surfaceflow/internal/logger"
	"surfaceflow/internal/service"
	httptransport "surfaceflow/internal/transport/http"
	"surfaceflow/internal/version"
	"surfaceflow/internal/worker"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the SurfaceFlow HTTP API under /api/v1 together with the automation runner.

Configuration comes from defaults, the optional --config file and SURFACEFLOW_* environment
variables, e.g. SURFACEFLOW_HTTP_ADDR=:9000 or SURFACEFLOW_LEDGER_BACKEND=redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, log)
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ledger, closeLedger, err := openLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	// DI
	queue, source, closeQueue, err := openQueue(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeQueue()

	automations := service.NewAutomationService(service.NewAutomationRegistry(), queue, log.Named("automation"))
	bookings := service.NewBookingService(service.NewBookingRegistry(), ledger, automations, log.Named("booking"))
	enrichments := service.NewEnrichmentService(
		service.NewEnrichmentRegistry(),
		ledger,
		fixture.NewGenerator(cfg.Fixtures.Seed),
		log.Named("enrichment"),
	)

	var routeOpts []httptransport.RouteOption
	if cfg.HTTP.RateLimit > 0 {
		routeOpts = append(routeOpts, httptransport.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)))
	}
	h := httptransport.NewHandler(automations, bookings, enrichments, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.Routes(h, log.Named("http"), routeOpts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		if source == nil {
			return
		}
		processor := worker.NewProcessor(automations, cfg.Automation.StepInterval, log.Named("worker"))
		worker.NewPool(source, processor, cfg.Automation.Workers, log.Named("worker")).Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("api started",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("version", version.Version),
			zap.String("ledger", cfg.Ledger.Backend),
			zap.Int("automation_workers", cfg.Automation.Workers),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return errors.Wrap(err, "listen")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	<-poolDone

	log.Info("api stopped")
	return nil
}
