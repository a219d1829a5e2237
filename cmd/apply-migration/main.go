package main

import (
	"fmt"
	"log"
	"os"

	"github.com/rrsc/House-Monitor-IoT-System/internal/config"
	"github.com/rrsc/House-Monitor-IoT-System/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(string(sqlContent)); err != nil {
		log.Fatalf("Failed to apply migration: %v", err)
	}

	fmt.Printf("Applied migration %s to %s\n", migrationFile, cfg.Database.Database)
}
