package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"views-api/internal/config"
	"views-api/internal/repository"
	"views-api/pkg/database"
)

// Applies the uniques table schema for the Postgres backend.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		fmt.Println("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Pool.Exec(ctx, repository.Schema); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration complete")
}
