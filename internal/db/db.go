package db

import (
	"log"
	"os"

	"updoot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init connects to Postgres and migrates the schema. Fatal on failure: the
// process is useless without its store.
func Init() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=updoot port=5432 sslmode=disable"
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Map driver duplicate-key errors to gorm.ErrDuplicatedKey so callers
		// can tell a uniqueness conflict from a store failure.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connection established")

	return conn
}

// Migrate creates/updates the schema. The Updoot FK to posts is declared with
// ON DELETE CASCADE; post deletion additionally removes updoots explicitly so
// the no-orphan-votes invariant does not depend on the store enforcing it.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Updoot{},
	)
}
