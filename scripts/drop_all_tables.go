package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("SUPABASE_DB_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	if env == "prod" {
		log.Fatal("refusing to drop tables in prod")
	}
	prefix := env + "_"
	if p, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		prefix = p
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Children first
	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]sreports CASCADE;
		DROP TABLE IF EXISTS %[1]sfiles CASCADE;
		DROP TABLE IF EXISTS %[1]sfolders CASCADE;
		DROP TABLE IF EXISTS %[1]sclients CASCADE;
	`, prefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All portal tables dropped (prefix: %q)\n", prefix)
}
