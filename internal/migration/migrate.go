package migration

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// RunMigrations applies every embedded *.up.sql file that has not been
// recorded in schema_migrations yet, in lexical order. Statements run
// through gorm so placeholder syntax follows the active dialect.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := ensureHistoryTable(ctx, db); err != nil {
		return err
	}

	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		for _, stmt := range strings.Split(string(content), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}

		if err := record(ctx, db, name); err != nil {
			return err
		}
	}

	return nil
}

func ensureHistoryTable(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func isApplied(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM schema_migrations WHERE name = ?", name).
		Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func record(ctx context.Context, db *gorm.DB, name string) error {
	err := db.WithContext(ctx).
		Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error
	if err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return nil
}
