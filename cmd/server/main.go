package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dispatch-tracking-service/internal/adapters/cache"
	"dispatch-tracking-service/internal/adapters/repositories"
	"dispatch-tracking-service/internal/api"
	"dispatch-tracking-service/internal/config"
	"dispatch-tracking-service/internal/platform/db"
	"dispatch-tracking-service/internal/ports"
	"dispatch-tracking-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, optionally Postgres and Redis)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/dispatch.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/dispatch.json")
	port := config.Get("PORT", "8080")

	store, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(store, seedPath); err != nil {
		log.Fatal(err)
	}

	deliveries := repositories.NewSqliteDeliveryRepository(store)
	vendors := repositories.NewSqliteVendorDirectory(store)

	// DATABASE_URL moves the driver registry to Postgres; everything
	// else stays on SQLite.
	var registry ports.DriverRegistry = repositories.NewSqliteDriverRegistry(store)
	if databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", "")); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		registry = repositories.NewSQLDriverRegistry(pg)
		log.Println("Driver registry backed by Postgres")
	}

	// Redis is optional: without it tracking reads fall back to the
	// position stored on the delivery row.
	var positions ports.PositionCache
	if addr := strings.TrimSpace(config.Get("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		ttl := config.GetDuration("POSITION_TTL", cache.DefaultPositionTTL)
		positions = cache.NewRedisPositionCache(rdb, ttl)
		log.Printf("Position cache backed by Redis addr=%s", addr)
	}

	dispatcher := services.NewDispatcher(deliveries, registry, vendors)
	ingestor := services.NewIngestor(registry, deliveries, positions)
	tracker := services.NewTracker(deliveries, registry, vendors, positions)

	router := api.NewRouter(dispatcher, ingestor, tracker, registry)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	store, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := store.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return store, nil
}

func initAndSeed(store *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(store); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(store, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
