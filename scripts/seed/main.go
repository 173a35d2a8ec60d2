// Command seed populates a development database with a small but complete
// kindergarten: one user per role, a group, and two enrolled children. It is
// idempotent via ON CONFLICT DO NOTHING, so re-running is safe.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kita-admin-api/pkg/config"
	"github.com/noah-isme/kita-admin-api/pkg/database"
)

type seedUser struct {
	id       string
	email    string
	password string
	fullName string
	role     string
}

func main() {
	var password string
	flag.StringVar(&password, "password", "changeme123", "password assigned to every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env == config.EnvProduction {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := []seedUser{
		{uuid.NewString(), "admin@kita.local", password, "Admin Account", "ADMIN"},
		{uuid.NewString(), "leitung@kita.local", password, "Leitung Meyer", "HEADTEACHER"},
		{uuid.NewString(), "erzieher@kita.local", password, "Jonas Weber", "TEACHER"},
		{uuid.NewString(), "eltern@kita.local", password, "Anna Keller", "PARENT"},
	}
	for _, u := range users {
		if _, err := db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, full_name, role, active)
VALUES ($1, $2, $3, $4, $5, TRUE) ON CONFLICT (email) DO NOTHING`,
			u.id, u.email, string(hash), u.fullName, u.role); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
	}

	groupID := mustSeedGroup(ctx, db)
	teacherID := lookupUserID(ctx, db, "erzieher@kita.local")
	parentID := lookupUserID(ctx, db, "eltern@kita.local")

	if _, err := db.ExecContext(ctx, `INSERT INTO staff (id, user_id, group_id, position, hired_at)
VALUES ($1, $2, $3, 'Erzieher', now()) ON CONFLICT (user_id) DO NOTHING`,
		uuid.NewString(), teacherID, groupID); err != nil {
		log.Fatalf("failed to seed staff: %v", err)
	}

	for _, name := range [][2]string{{"Mia", "Keller"}, {"Ben", "Keller"}} {
		if _, err := db.ExecContext(ctx, `INSERT INTO children (id, parent_id, group_id, first_name, last_name, birth_date, active)
SELECT $1, $2, $3, $4, $5, '2022-05-14', TRUE
WHERE NOT EXISTS (SELECT 1 FROM children WHERE parent_id = $2 AND first_name = $4 AND last_name = $5)`,
			uuid.NewString(), parentID, groupID, name[0], name[1]); err != nil {
			log.Fatalf("failed to seed child %s %s: %v", name[0], name[1], err)
		}
	}

	log.Printf("seeded %d users, one group, two children (password %q)", len(users), password)
}

func mustSeedGroup(ctx context.Context, db *sqlx.DB) string {
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT INTO groups (id, name, capacity, age_min, age_max, room)
SELECT $1, 'Sonnenblumen', 20, 3, 6, 'Raum 1'
WHERE NOT EXISTS (SELECT 1 FROM groups WHERE name = 'Sonnenblumen')`, id); err != nil {
		log.Fatalf("failed to seed group: %v", err)
	}
	var existing string
	if err := db.GetContext(ctx, &existing, "SELECT id FROM groups WHERE name = 'Sonnenblumen'"); err != nil {
		log.Fatalf("failed to load seeded group: %v", err)
	}
	return existing
}

func lookupUserID(ctx context.Context, db *sqlx.DB, email string) string {
	var id string
	if err := db.GetContext(ctx, &id, "SELECT id FROM users WHERE email = $1", email); err != nil {
		log.Fatalf("failed to load seeded user %s: %v", email, err)
	}
	return id
}
