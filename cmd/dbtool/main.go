package main

import (
	"database/sql"
	"log"

	"dispatch-tracking-service/internal/adapters/repositories"
	"dispatch-tracking-service/internal/config"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool initializes the SQLite schema and loads seed data. Useful
// for resetting a local database without starting the server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/dispatch.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/dispatch.json")

	store, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("open sqlite database %q: %v", dbPath, err)
	}
	defer store.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(store); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(store, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
