package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/liuqy/experiment-management/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if seedClearData {
			for _, table := range []string{"permission_grants", "activities", "users"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing users, grants and activities")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		seedUser(db, "admin", string(hash), "Admin")
		labUserID := seedUser(db, "lab_tech", string(hash), "User")

		// The sample technician can read everything but only write the
		// measurement modules.
		for _, module := range auth.Modules {
			canWrite := module == auth.ModuleFingerBlood || module == auth.ModuleSensor
			if _, err := db.Exec(`
				INSERT INTO permission_grants (user_id, module, can_read, can_write, can_delete, created_at, updated_at)
				VALUES ($1, $2, true, $3, false, now(), now())
				ON CONFLICT (user_id, module) DO UPDATE
				SET can_read = EXCLUDED.can_read, can_write = EXCLUDED.can_write, can_delete = EXCLUDED.can_delete, updated_at = now()`,
				labUserID, string(module), canWrite); err != nil {
				log.Fatalf("failed to seed grant for %s: %v", module, err)
			}
		}
		fmt.Println("Seeded grants for lab_tech")
	},
}

// seedUser inserts the account when missing and returns its id either way.
func seedUser(db *sqlx.DB, username, hash, role string) int64 {
	var id int64
	err := db.QueryRow("SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		fmt.Printf("user %s already exists\n", username)
		return id
	}

	err = db.QueryRow(`
		INSERT INTO users (username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id`, username, hash, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	fmt.Printf("Seeded %s user: %s\n", role, username)
	return id
}
