package main

import (
	"flag"
	"os"

	migrate "github.com/rubenv/sql-migrate"

	"server/cmd/migration/initialize"
	"server/cmd/migration/seed"
	"server/config"
	"server/internal/database"
	"server/internal/logger"
)

func main() {
	log := logger.New("migration")

	var (
		down     = flag.Bool("down", false, "roll back the most recent migration")
		seedData = flag.Bool("seed", false, "seed development data after migrating")
		dir      = flag.String("dir", "migrations", "migration directory")
	)
	flag.Parse()

	config, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	sqlDB, err := db.SQL.DB()
	if err != nil {
		log.Er("failed to unwrap database handle", err)
		os.Exit(1)
	}

	source := &migrate.FileMigrationSource{Dir: *dir}

	direction := migrate.Up
	if *down {
		direction = migrate.Down
	}

	applied, err := migrate.Exec(sqlDB, "sqlite3", source, direction)
	if err != nil {
		log.Er("migration failed", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "count", applied, "down", *down)

	if *down {
		return
	}

	if err := initialize.InitializeTables(db.SQL, config, log); err != nil {
		log.Er("table initialization failed", err)
		os.Exit(1)
	}

	if *seedData {
		if !config.IsDevelopment() {
			log.Warn("refusing to seed outside development", "environment", config.Environment)
			return
		}
		if err := seed.Seed(db.SQL, config, log); err != nil {
			log.Er("seeding failed", err)
			os.Exit(1)
		}
	}
}
