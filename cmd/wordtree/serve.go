package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/cache"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/server/handler"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/redis"
)

func newServeCmd(a *app) *cobra.Command {
	var preload []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index and codec HTTP API",
		Long: `Starts the HTTP API, the Prometheus metrics server when enabled and
the Kafka text consumer when kafka.enabled is set. Files passed with
--preload are indexed before the listener opens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a.cfg, preload)
		},
	}
	cmd.Flags().StringArrayVar(&preload, "preload", nil, "text file to index at startup; repeatable")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, preload []string) error {
	slog.Info("starting wordtree service",
		"port", cfg.Server.Port,
		"variant", cfg.Indexer.Variant,
		"kafka", cfg.Kafka.Enabled,
	)

	m := metrics.New(nil)
	engine, err := indexer.NewEngine(cfg.Indexer, m)
	if err != nil {
		return err
	}
	for _, path := range preload {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		stats, err := engine.IndexText(string(data))
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		slog.Info("preloaded text", "path", path, "lines", stats.Lines, "tokens", stats.Tokens)
	}

	checker := health.NewChecker()
	checker.Register("index_engine", health.FuncCheck(func(context.Context) error {
		return engine.Validate()
	}))

	opts := []handler.Option{
		handler.WithMetrics(m),
		handler.WithReportOptions(report.OptionsFromConfig(cfg)),
	}
	if cfg.Server.MaxBodyBytes > 0 {
		opts = append(opts, handler.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
	}
	if cfg.Codec.CacheEnabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, compression caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			opts = append(opts, handler.WithCache(cache.New(redisClient, cfg.Redis.CacheTTL, m)))
			checker.Register("redis", health.PingCheck(redisClient, health.StatusDegraded))
			slog.Info("compression cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	mux := http.NewServeMux()
	handler.New(engine, opts...).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		chain = middleware.RateLimit(ratelimit.New(ctx, cfg.Server.RateLimit, time.Minute))(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	servers := []*http.Server{server}

	g.Go(func() error {
		slog.Info("wordtree service listening", "addr", server.Addr)
		return listen(server)
	})
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port, nil)
		servers = append(servers, metricsServer)
		g.Go(func() error {
			slog.Info("metrics server listening", "addr", metricsServer.Addr)
			return listen(metricsServer)
		})
	}
	if cfg.Kafka.Enabled {
		c := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.TextIngest, consumer.HandleMessage(engine, m))
		g.Go(func() error {
			return c.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", s.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("wordtree service stopped")
	return nil
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listening on %s: %w", s.Addr, err)
	}
	return nil
}
