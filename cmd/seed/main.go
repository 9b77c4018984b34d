// Command seed fills an empty catalog with sample products and creates the
// contact record if there is none.
package main

import (
	"context"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contact"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store docstore.Store
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()
		store = docstore.NewPostgresStore(pool)
	case "firestore":
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
		} else if cfg.FirebaseCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
		if err != nil {
			logger.Fatalf("init firebase: %v", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			logger.Fatalf("firestore client: %v", err)
		}
		defer client.Close()
		store = docstore.NewFirestoreStore(client)
	default:
		logger.Fatalf("STORE_DRIVER=%s keeps nothing between runs; seed a postgres or firestore store", cfg.StoreDriver)
	}

	n, err := catalog.SeedSamples(ctx, store, time.Now())
	if err != nil {
		logger.Fatalf("seed products: %v", err)
	}
	logger.Printf("added %d sample products", n)

	created, err := contact.NewService(store).Ensure(ctx, contact.Info{})
	if err != nil {
		logger.Fatalf("contact: %v", err)
	}
	if created {
		logger.Printf("created empty contact record")
	}
}
