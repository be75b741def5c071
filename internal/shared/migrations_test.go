package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM plays LIMIT 1"); err != nil {
			t.Errorf("plays table should exist after migrations: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run should be a no-op: %v", err)
		}

		version, err := schemaVersion(db)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if version != 0 {
			t.Errorf("expected schema version 0, got %d", version)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM plays LIMIT 1"); err == nil {
			t.Error("plays table should not exist after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("rolling back with nothing applied should fail")
		}
	})

	t.Run("statements", func(t *testing.T) {
		script := "-- header\nCREATE TABLE a (x INT);\n\n-- second\nCREATE TABLE b (y INT);\n"
		got := statements(script)
		if len(got) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
		}
		if got[0] != "CREATE TABLE a (x INT)" {
			t.Errorf("unexpected first statement %q", got[0])
		}
	})
}

func TestOpenHistory(t *testing.T) {
	db, err := OpenHistory(DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM plays").Scan(&count); err != nil {
		t.Fatalf("failed to count plays: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty plays table, got %d rows", count)
	}
}
