package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contact"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/dashboard"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/i18n"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/livefeed"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

const (
	sweepInterval  = 5 * time.Minute
	sessionRetain  = 30 * 24 * time.Hour
	shutdownWindow = 10 * time.Second
)

func main() {
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	translations, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		logger.Fatalf("i18n: %v", err)
	}

	// --- storage + identity ---
	be, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer be.Close()

	if cfg.StoreDriver == "memory" {
		if _, err := catalog.SeedSamples(ctx, be.store, time.Now()); err != nil {
			logger.Fatalf("seed: %v", err)
		}
		if _, err := contact.NewService(be.store).Ensure(ctx, contact.Info{}); err != nil {
			logger.Fatalf("seed contact: %v", err)
		}
	}

	// --- events ---
	hub := livefeed.NewHub(logger, cfg.CORSAllowOrigins)
	broadcast := func(ctx context.Context, p events.OrderCreatedPayload) {
		hub.Broadcast(livefeed.Message{Type: events.EventTypeOrderCreated, Data: p})
	}

	var (
		tracker  events.Tracker
		notifier checkout.OrderNotifier
	)
	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if conn != nil {
		defer conn.Close()

		pub, err := events.NewPublisher(conn, events.PublisherOptions{Currency: cfg.Currency}, logger)
		if err != nil {
			logger.Fatalf("publisher: %v", err)
		}
		defer pub.Close()
		tracker, notifier = pub, pub

		// orders placed by any instance reach every connected admin
		if err := events.StartOrderFeedConsumer(ctx, conn, broadcast, logger); err != nil {
			logger.Fatalf("start consumer: %v", err)
		}
	} else {
		lt := events.NewLogTracker(logger, cfg.Currency, broadcast)
		tracker, notifier = lt, lt
	}

	// --- sessions ---
	sessions := session.NewRegistry(session.Deps{
		KV:       be.kv,
		Store:    be.store,
		Catalog:  translations,
		Orders:   order.NewWriter(be.store),
		Notifier: notifier,
		Logger:   logger,
	})
	go sessions.Run(ctx, sweepInterval, cfg.SessionIdleTTL, sessionRetain)

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		SecureCookies:    cfg.SecureCookies,
		AdminTTL:         cfg.AdminTTL,
		Sessions:         sessions,
		Catalog:          catalog.NewReader(be.store, logger),
		I18n:             translations,
		Contact:          contact.NewService(be.store),
		Dashboard:        dashboard.NewService(order.NewRepository(be.store, time.Now), time.Now),
		Tracker:          tracker,
		Auth:             be.auth,
		AuthNotifier:     auth.NewNotifier(),
		Feed:             hub,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	stop()

	logger.Printf("shutdown complete")
}
