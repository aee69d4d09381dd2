package main

import (
	"log"

	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/storage/gormstore"
)

// Applies the relational schema for the configured DB_DRIVER.
func main() {
	config.ConnectDatabaseWithRetry()
	store := gormstore.New(config.GetDB())
	if err := store.Migrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migration complete")
}
