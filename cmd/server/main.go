package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/Skotchmaster/shopdb/internal/config"
	"github.com/Skotchmaster/shopdb/internal/httpserver"
	"github.com/Skotchmaster/shopdb/internal/jobs"
	"github.com/Skotchmaster/shopdb/internal/models"
	"github.com/Skotchmaster/shopdb/internal/repo"
	"github.com/Skotchmaster/shopdb/internal/search"
	"github.com/Skotchmaster/shopdb/internal/service"
	"github.com/Skotchmaster/shopdb/pkg/cache"
	pkgdb "github.com/Skotchmaster/shopdb/pkg/db"
	"github.com/Skotchmaster/shopdb/pkg/events"
	"github.com/Skotchmaster/shopdb/pkg/logging"
	authmw "github.com/Skotchmaster/shopdb/pkg/middleware/auth"
	metricsmw "github.com/Skotchmaster/shopdb/pkg/middleware/metrics"
	ratelimitmw "github.com/Skotchmaster/shopdb/pkg/middleware/ratelimit"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("shopdb: %v", err)
	}
}

func run() error {
	started := time.Now()

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.Env).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	cancel()
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer pkgdb.Close(db)

	if cfg.ShouldAutoMigrate() {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			return errors.Wrap(err, "auto migrate")
		}
		logger.Info("schema_synchronised", "driver", cfg.Database.Driver)
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	store := newCache(cfg, logger)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	index := newIndex(cfg, logger)

	r := repo.New(db)
	deps := &service.Deps{
		Repo:     r,
		Events:   publisher,
		Cache:    store,
		CacheTTL: cfg.Redis.TTL,
	}

	metrics := metricsmw.New("shopdb")
	limiter := ratelimitmw.New(cfg.Limits.RPS, cfg.Limits.Burst)
	stopCleanup := make(chan struct{})
	limiter.StartCleanup(time.Minute, stopCleanup)
	defer close(stopCleanup)

	jwt := authmw.New([]byte(cfg.JWT.Secret))
	jwt.SecureCookie = cfg.SecureCookies()
	routes := &httpserver.Deps{
		App: &httpserver.AppHTTP{
			Name:    cfg.ServiceName,
			Version: cfg.Version,
			Env:     cfg.Env,
			Started: started,
			Ping:    r.Ping,
		},
		Users: &httpserver.UsersHTTP{Svc: service.NewUserService(deps)},
		Auth: &httpserver.AuthHTTP{
			Svc:          service.NewAuthService(deps, []byte(cfg.JWT.Secret), cfg.JWT.AccessTTL),
			SecureCookie: cfg.SecureCookies(),
		},
		Categories: &httpserver.CategoriesHTTP{Svc: service.NewCategoryService(deps)},
		Products:   &httpserver.ProductsHTTP{Svc: service.NewProductService(deps, index)},
		Orders:     &httpserver.OrdersHTTP{Svc: service.NewOrderService(deps, index)},
		JWT:        jwt,
		Metrics:    metrics.Handler(),
	}
	if cfg.JWT.GuardAdmin {
		routes.AdminGuard = jwt.RequireAdmin
	}

	e := httpserver.NewEcho(logger, metrics.Middleware, limiter.Middleware)
	httpserver.Register(e, routes)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Add(cfg.LowStockCron, jobs.LowStock{Repo: r, Events: publisher}); err != nil {
		return errors.Wrap(err, "schedule low stock scan")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-serveErr:
		return errors.Wrap(err, "listen")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	logger.Info("shopdb_stopped")
	return nil
}

func newPublisher(cfg *config.Config, l *slog.Logger) events.Publisher {
	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		l.Info("kafka_disabled")
		return events.Noop{}
	}
	return events.NewProducer(brokers)
}

func newCache(cfg *config.Config, l *slog.Logger) cache.Cache {
	if cfg.Redis.Addr == "" {
		l.Info("redis_disabled")
		return cache.Noop{}
	}
	c, err := cache.NewRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		l.Warn("redis_unavailable", "addr", cfg.Redis.Addr, "error", err)
		return cache.Noop{}
	}
	return c
}

func newIndex(cfg *config.Config, l *slog.Logger) search.ProductIndex {
	if cfg.Search.URL == "" {
		l.Info("elasticsearch_disabled")
		return search.Noop{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	idx, err := search.NewElastic(ctx, cfg.Search.URL, cfg.Search.User, cfg.Search.Password, cfg.Search.Index)
	if err != nil {
		l.Warn("elasticsearch_unavailable", "url", cfg.Search.URL, "error", err)
		return search.Noop{}
	}
	return idx
}
