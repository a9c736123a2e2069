// Seeds the database with demo referral traffic.
// Execute: go run ./cmd/tools/seed -hits 500 -leads 50
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"reftrack/internal/config"
	"reftrack/internal/database"
	"reftrack/internal/logging"
	"reftrack/internal/seeder"
)

func main() {
	hitCount := flag.Int("hits", 500, "number of hits to create")
	leadCount := flag.Int("leads", 50, "number of leads to create")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := seeder.NewSeeder(dbManager.GetConnection(), logger, *hitCount, *leadCount)
	if err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
