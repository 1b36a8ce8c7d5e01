package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/XavierBriggs/Janus/adapters/theoddsapi"
	"github.com/XavierBriggs/Janus/internal/bookmakers"
	"github.com/XavierBriggs/Janus/internal/config"
	"github.com/XavierBriggs/Janus/internal/delta"
	"github.com/XavierBriggs/Janus/internal/expirer"
	"github.com/XavierBriggs/Janus/internal/handlers"
	"github.com/XavierBriggs/Janus/internal/logger"
	"github.com/XavierBriggs/Janus/internal/metrics"
	"github.com/XavierBriggs/Janus/internal/publisher"
	"github.com/XavierBriggs/Janus/internal/registry"
	"github.com/XavierBriggs/Janus/internal/scanner"
	"github.com/XavierBriggs/Janus/internal/scheduler"
	"github.com/XavierBriggs/Janus/internal/writer"
	"github.com/XavierBriggs/Janus/pkg/contracts"
	"github.com/XavierBriggs/Janus/sports/basketball_nba"
	"github.com/XavierBriggs/Janus/sports/soccer_epl"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("janus", cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("janus exited", zap.Error(err))
	}
	log.Info("janus stopped")
}

// sportModules builds the registered sports with the configured event cap
// and regions applied
func sportModules(cfg config.Config) []contracts.SportModule {
	nba := basketball_nba.DefaultConfig()
	nba.EventLimit = cfg.EventLimit
	nba.Regions = cfg.Regions

	epl := soccer_epl.DefaultConfig()
	epl.EventLimit = cfg.EventLimit
	epl.Regions = cfg.Regions

	return []contracts.SportModule{
		basketball_nba.NewModuleWithConfig(nba),
		soccer_epl.NewModuleWithConfig(epl),
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	adapter := theoddsapi.NewClient(cfg.OddsAPIKey)

	sportRegistry := registry.NewSportRegistry()
	for _, module := range sportModules(cfg) {
		if err := sportRegistry.Register(module); err != nil {
			return fmt.Errorf("register sport: %w", err)
		}
	}
	log.Info("registered sports", zap.Strings("sports", sportRegistry.Keys()))
	if unknown := bookmakers.Unknown(cfg.AllowedBookmakers); len(unknown) > 0 {
		log.Warn("allow-list names bookmakers outside the catalog", zap.Strings("bookmakers", unknown))
	}

	scan := scanner.NewScanner(adapter, log,
		scanner.WithRegistry(sportRegistry),
		scanner.WithMetrics(m),
		scanner.WithRegions(cfg.Regions),
		scanner.WithEventLimit(cfg.EventLimit),
	)

	h := handlers.NewHandler(scan, adapter, cfg.Arbitrage(), log)

	var (
		redisClient *redis.Client
		db          *sql.DB
		sinks       []contracts.OpportunitySink
	)

	if cfg.AlexandriaDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.AlexandriaDSN)
		if err != nil {
			return fmt.Errorf("open Alexandria DB: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping Alexandria DB: %w", err)
		}
		log.Info("connected to Alexandria DB")

		sinks = append(sinks, writer.NewWriter(db, log))
		h.AddHealthCheck("alexandria", db.PingContext)
	}

	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		log.Info("connected to Redis")

		sinks = append(sinks, publisher.NewStreamPublisher(redisClient))
		h.AddHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return fmt.Errorf("init kafka publisher: %w", err)
		}
		defer kafkaPub.Close()
		sinks = append(sinks, kafkaPub)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.PollEnabled {
		opts := []scheduler.Option{scheduler.WithSinks(sinks...), scheduler.WithMetrics(m), scheduler.WithJitter(5)}
		if redisClient != nil {
			opts = append(opts, scheduler.WithDeduper(delta.NewEngine(redisClient, cfg.DedupTTL)))
		} else {
			log.Warn("polling without Redis: every scan republishes its opportunities")
		}

		sched := scheduler.NewScheduler(scan, sportRegistry, cfg.Arbitrage(), log, opts...)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			return nil
		})
	}

	if db != nil {
		exp := expirer.NewExpirer(db, log, cfg.ExpireInterval, cfg.Retention)
		exp.Start(ctx)
		g.Go(func() error {
			<-ctx.Done()
			exp.Stop()
			return nil
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handlers.NewRouter(h, reg, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.Bool("polling", cfg.PollEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
