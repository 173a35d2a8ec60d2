package main

import (
	"embed"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/noah-isme/kita-admin-api/pkg/config"
	"github.com/noah-isme/kita-admin-api/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	command := flag.String("command", "up", "goose command: up, down, status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set dialect: %v", err)
	}

	switch *command {
	case "up":
		err = goose.Up(db.DB, "migrations")
	case "down":
		err = goose.Down(db.DB, "migrations")
	case "status":
		err = goose.Status(db.DB, "migrations")
	default:
		err = fmt.Errorf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
