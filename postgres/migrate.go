package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for running the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

func (m Migration) execute(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := m.Executor(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

// MigrateUp runs all migrations not yet recorded in the migrations table,
// recording each one as it completes. Each migration runs in its own transaction.
func MigrateUp(db *DB, migrations []Migration) error {
	gdb := db.DB()

	if err := ensureSchema(gdb, "public"); err != nil {
		return err
	}

	if err := ensureMigrationsTable(gdb); err != nil {
		return err
	}

	toRun, err := determineMigrationsToRun(gdb, migrations)
	if err != nil {
		return err
	}

	for _, m := range toRun {
		if err := m.execute(gdb); err != nil {
			return fmt.Errorf("failed migration %q: %w", m.Key, err)
		}

		if err := createMigrationRecord(gdb, m.Key); err != nil {
			return err
		}
	}

	return nil
}

func ensureSchema(db *gorm.DB, schema string) error {
	err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error
	if err != nil {
		return fmt.Errorf("failed creating %s schema: %w", schema, err)
	}

	return nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("failed creating migrations table: %w", err)
	}

	return nil
}

type migrationKeyCol struct {
	Key string
}

func determineMigrationsToRun(db *gorm.DB, allMigrations []Migration) ([]Migration, error) {
	ranMigrations := []migrationKeyCol{}
	r := db.Raw("SELECT key FROM migrations;")
	if r.Error != nil {
		return nil, fmt.Errorf("failed fetching ran migrations: %w", r.Error)
	}
	r.Scan(&ranMigrations)

	if len(ranMigrations) == 0 {
		return allMigrations, nil
	}

	migrationsToRun := []Migration{}
	for _, toCheck := range allMigrations {
		itsBeenRun := false
		for _, ranMigration := range ranMigrations {
			if toCheck.Key == ranMigration.Key {
				itsBeenRun = true
				break
			}
		}

		if !itsBeenRun {
			migrationsToRun = append(migrationsToRun, toCheck)
		}
	}

	return migrationsToRun, nil
}

func createMigrationRecord(db *gorm.DB, key string) error {
	err := db.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, key, time.Now().Unix()).Error
	if err != nil {
		return fmt.Errorf("failed recording migration %q: %w", key, err)
	}

	return nil
}
