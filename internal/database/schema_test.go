package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_refresh_tokens_table.sql",
		"00003_create_products_table.sql",
		"00004_create_subscriptions_table.sql",
		"00005_create_user_plans_table.sql",
		"00006_create_orders_table.sql",
		"00007_create_sales_table.sql",
		"00008_create_adoption_forms_table.sql",
		"00009_create_email_outbox_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":          "00001_create_users_table.sql",
		"refresh_tokens": "00002_create_refresh_tokens_table.sql",
		"products":       "00003_create_products_table.sql",
		"subscriptions":  "00004_create_subscriptions_table.sql",
		"user_plans":     "00005_create_user_plans_table.sql",
		"orders":         "00006_create_orders_table.sql",
		"sales":          "00007_create_sales_table.sql",
		"adoption_forms": "00008_create_adoption_forms_table.sql",
		"email_outbox":   "00009_create_email_outbox_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		createTableStmt := "CREATE TABLE " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		dropTableStmt := "DROP TABLE " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestProductsTableEnforcesNonNegativeStock(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00003_create_products_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)

	// Stock can never go negative; the checkout decrement relies on this
	if !strings.Contains(contentStr, "CHECK (quantity >= 0)") {
		t.Error("Products table missing non-negative quantity check")
	}
}

func TestUserPlansTableAllowsNullExpiry(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_user_plans_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read user_plans migration: %v", err)
	}

	contentStr := string(content)

	// expiry_date is nullable: a null expiry means the plan never expires
	if strings.Contains(contentStr, "expiry_date TIMESTAMP NOT NULL") {
		t.Error("user_plans.expiry_date must be nullable")
	}

	if !strings.Contains(contentStr, "CHECK (expiry_date IS NULL OR expiry_date >= start_date)") {
		t.Error("user_plans missing expiry >= start check")
	}
}

func TestEmailOutboxTableHasClaimIndex(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00009_create_email_outbox_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read email_outbox migration: %v", err)
	}

	contentStr := string(content)

	// The dispatcher claim query filters on (status, next_attempt_at)
	if !strings.Contains(contentStr, "ON email_outbox(status, next_attempt_at)") {
		t.Error("email_outbox missing claim index on (status, next_attempt_at)")
	}
}
