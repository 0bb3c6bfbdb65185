package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	profileDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/profile"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with baseline data",
	Long:  `Seed the database with the reserved administrator account, baseline profiles and the permission catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			clearTables(db)
		}

		seedProfiles(db)
		seedPermissionCatalog(db)
		seedAdminUser(db, cfg.Security.BCryptCost)
		seedViewerUser(db, cfg.Security.BCryptCost)

		fmt.Println("Database seeded successfully")
	},
}

func clearTables(db *gorm.DB) {
	// Join tables first; access_events references users.
	tables := []string{
		"access_events",
		"permission_grants",
		"profile_memberships",
		"users",
		"profiles",
		"permissions",
	}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			log.Fatalf("failed to clear table %s: %v", t, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedProfiles(db *gorm.DB) {
	profiles := []struct {
		ID   int64
		Name string
		Desc string
	}{
		{profileDatamodel.AdminProfileID, "Administrators", "Members bypass permission checks entirely"},
		{2, "Viewers", "Read-only access to users and audit logs"},
	}

	for _, p := range profiles {
		var exists int
		row := db.Raw("SELECT 1 FROM profiles WHERE id = ?", p.ID).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO profiles (id, name, description) VALUES (?, ?, ?)", p.ID, p.Name, p.Desc).Error; err != nil {
			log.Fatalf("failed to insert profile %s: %v", p.Name, err)
		}
		fmt.Println("Seeded profile:", p.Name)
	}

	// Explicit ids were used; keep the sequence ahead of them.
	if err := db.Exec("SELECT setval('profiles_id_seq', (SELECT MAX(id) FROM profiles))").Error; err != nil {
		log.Fatalf("failed to advance profiles sequence: %v", err)
	}
}

func seedPermissionCatalog(db *gorm.DB) {
	permissions := []struct {
		Name     string
		Resource string
		Action   string
	}{
		{"View users", "users:read", "Read"},
		{"Create users", "users:create", "Create"},
		{"Edit users", "users:update", "Update"},
		{"Delete users", "users:delete", "Delete"},
		{"View profiles", "profiles:read", "Read"},
		{"Edit profiles", "profiles:update", "Update"},
		{"Delete profiles", "profiles:delete", "Delete"},
		{"Manage permission catalog", "permissions:update", "Update"},
		{"View access log", "accesses:read", "Read"},
	}

	for _, p := range permissions {
		var pid int64
		row := db.Raw("SELECT id FROM permissions WHERE resource = ? AND action = ?", p.Resource, p.Action).Row()
		if err := row.Scan(&pid); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO permissions (name, resource, action) VALUES (?, ?, ?)", p.Name, p.Resource, p.Action).Error; err != nil {
			log.Fatalf("failed to insert permission %s: %v", p.Name, err)
		}
	}

	fmt.Println("Seeded permission catalog")

	// Viewers get the read-only slice of the catalog.
	viewerResources := []string{"users:read", "accesses:read"}
	for _, resource := range viewerResources {
		var pid int64
		if err := db.Raw("SELECT id FROM permissions WHERE resource = ?", resource).Row().Scan(&pid); err != nil {
			log.Fatalf("permission not found for resource %s: %v", resource, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM permission_grants WHERE profile_id = ? AND permission_id = ?", 2, pid).Row().Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO permission_grants (profile_id, permission_id) VALUES (?, ?)", 2, pid).Error; err != nil {
			log.Fatalf("failed to grant %s to Viewers: %v", resource, err)
		}
	}
}

func seedAdminUser(db *gorm.DB, bcryptCost int) {
	adminEmail := "admin@usermanagement.local"

	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE id = ?", userDatamodel.AdminUserID).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("admin user already exists; will ensure membership")
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		if err := db.Exec(
			"INSERT INTO users (id, name, email, password_hash, status, registered_at) VALUES (?, ?, ?, ?, ?, now())",
			userDatamodel.AdminUserID, "Administrator", adminEmail, string(hash), userDatamodel.StatusActive,
		).Error; err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", adminEmail)
	}

	if err := db.Exec("SELECT setval('users_id_seq', (SELECT MAX(id) FROM users))").Error; err != nil {
		log.Fatalf("failed to advance users sequence: %v", err)
	}

	if err := db.Raw(
		"SELECT 1 FROM profile_memberships WHERE user_id = ? AND profile_id = ?",
		userDatamodel.AdminUserID, profileDatamodel.AdminProfileID,
	).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec(
		"INSERT INTO profile_memberships (user_id, profile_id) VALUES (?, ?)",
		userDatamodel.AdminUserID, profileDatamodel.AdminProfileID,
	).Error; err != nil {
		log.Fatalf("failed to add admin membership: %v", err)
	}
	fmt.Println("Added admin user to Administrators profile")
}

func seedViewerUser(db *gorm.DB, bcryptCost int) {
	viewerEmail := "viewer@usermanagement.local"

	var userID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", viewerEmail).Row().Scan(&userID); err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("viewer"), bcryptCost)
		if err != nil {
			log.Fatalf("failed to hash viewer password: %v", err)
		}
		if err := db.Exec(
			"INSERT INTO users (name, email, password_hash, status, registered_at) VALUES (?, ?, ?, ?, now())",
			"Viewer", viewerEmail, string(hash), userDatamodel.StatusActive,
		).Error; err != nil {
			log.Fatalf("failed to insert viewer user: %v", err)
		}
		if err := db.Raw("SELECT id FROM users WHERE email = ?", viewerEmail).Row().Scan(&userID); err != nil {
			log.Fatalf("failed to lookup viewer user id: %v", err)
		}
		fmt.Println("Seeded viewer user:", viewerEmail)
	}

	var exists int
	if err := db.Raw(
		"SELECT 1 FROM profile_memberships WHERE user_id = ? AND profile_id = ?", userID, 2,
	).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO profile_memberships (user_id, profile_id) VALUES (?, ?)", userID, 2).Error; err != nil {
		log.Fatalf("failed to add viewer membership: %v", err)
	}
	fmt.Println("Added viewer user to Viewers profile")
}
