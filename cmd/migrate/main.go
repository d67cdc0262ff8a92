package main

import (
	"context"
	"log"
	"os"

	"biasdetect/adapters/db"
	"biasdetect/internal/config"

	"github.com/joho/godotenv"
)

// migrate applies the audit history schema to DATABASE_URL, or to the URL
// given as the only argument.
func main() {
	_ = godotenv.Load()

	dbConfig := config.DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
	if len(os.Args) > 1 {
		dbConfig.URL = os.Args[1]
	}
	if !dbConfig.Enabled() {
		log.Fatal("Usage: migrate <database_url> (or set DATABASE_URL)")
	}

	log.Printf("Applying migrations with the %s driver", dbConfig.Driver())

	conn, err := db.Open(context.Background(), dbConfig.Driver(), dbConfig.DSN())
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer conn.Close()

	log.Println("Audit history schema is up to date")
}
