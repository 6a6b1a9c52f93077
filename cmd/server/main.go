package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	gdb, err := db.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("database migrate: %v", err)
	}
	r := &repo.GormRepo{DB: gdb}

	var publisher mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
		publisher = producer
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var searchClient *search.Client
	if cfg.ESURL != "" {
		searchClient, err = search.NewClient(startCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
			searchClient = nil
		}
	}

	m := metrics.New()
	auth := &service.AuthService{Repo: r, Secret: cfg.SessionSecret, TTL: cfg.SessionTTL, Publisher: publisher}
	catalog := &service.CatalogService{Repo: r}
	cart := &service.CartService{Repo: r, Publisher: publisher}
	orders := &service.OrderService{Repo: r, Publisher: publisher, Metrics: m}
	admin := &service.AdminService{Repo: r, Publisher: publisher, Images: storage.NewImages(cfg.ImagesDir)}
	if searchClient != nil {
		catalog.Searcher = searchClient
		admin.Indexer = searchClient
		if err := reindex(startCtx, r, searchClient); err != nil {
			logger.Warn("search_reindex_failed", "error", err)
		}
	}

	if err := auth.EnsureAdmin(startCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		loggingmw.RequestLogger(logger),
		m.Middleware(),
		middleware.BodyLimit("10M"),
	)
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:       cfg.CookieSecure,
			SkipPrefixes: []string{"/metrics", "/health"},
		}))
	}

	deps := httpserver.NewDeps(gdb, cfg.SessionSecret, cfg.CookieSecure, auth, catalog, cart, orders, admin)
	deps.Metrics = m.Handler()
	deps.ImagesDir = cfg.ImagesDir
	deps.PublicDir = cfg.PublicDir
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	log.Println("shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

// reindex pushes the whole catalog into the search index so it matches the database.
func reindex(ctx context.Context, r *repo.GormRepo, idx service.ProductIndexer) error {
	products, err := r.ListProductsNewest(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := idx.IndexProduct(ctx, p); err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	slog.Info("search_reindexed", "products", len(products))
	return nil
}
