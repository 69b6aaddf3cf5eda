package main

import (
	"log"
	"os"

	"discord-warden/bot"
	"discord-warden/config"
	"discord-warden/handlers"
	"discord-warden/utils/database/enforcements"
	"discord-warden/utils/database/warnings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := warnings.Init(cfg.WarningDBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	if err := enforcements.InitSchema(db); err != nil {
		log.Fatalf("Error creating enforcement tables: %v", err)
	}

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
