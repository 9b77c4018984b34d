package main

import (
	"context"
	"fmt"
	"io"
	"log"

	firebase "firebase.google.com/go"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

// backends holds every connection opened for the configured drivers.
type backends struct {
	store docstore.Store
	kv    session.KV
	auth  auth.Provider

	closers []io.Closer
	pool    *pgxpool.Pool
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func openBackends(ctx context.Context, cfg config.Config, logger *log.Logger) (*backends, error) {
	b := &backends{}

	var app *firebase.App
	if cfg.UsesFirebase() {
		var err error
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.UsesPostgres() && cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return nil, fmt.Errorf("db migrate: %w", err)
		}
	}

	switch cfg.StoreDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("db connect: %w", err)
		}
		b.pool = pool
		b.store = docstore.NewPostgresStore(pool)
	case "firestore":
		client, err := app.Firestore(ctx)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		b.closers = append(b.closers, client)
		b.store = docstore.NewFirestoreStore(client)
	default:
		b.store = docstore.NewMemoryStore()
	}

	switch cfg.SessionDriver {
	case "postgres":
		sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("session db: %w", err)
		}
		b.closers = append(b.closers, sqlDB)
		b.kv = session.NewSQLStore(sqlDB)
	default:
		b.kv = session.NewMemoryKV()
	}

	switch cfg.IdentityDriver {
	case "firebase":
		client, err := app.Auth(ctx)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		b.auth = auth.NewFirebaseProvider(client, cfg.FirebaseAPIKey, cfg.AdminTTL)
	default:
		accounts, err := auth.ParseAccounts(cfg.AdminAccounts)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("ADMIN_ACCOUNTS: %w", err)
		}
		if len(accounts) == 0 {
			logger.Printf("no ADMIN_ACCOUNTS configured; admin sign-in is disabled")
		}
		b.auth = auth.NewLocalProvider(accounts, cfg.JWTSecret, cfg.AdminTTL)
	}

	return b, nil
}

func newFirebaseApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	switch {
	case cfg.FirebaseCredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	case cfg.FirebaseCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	return app, nil
}
