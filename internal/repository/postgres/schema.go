package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrations embed.FS

const seedCategories = `
	INSERT INTO service_categories (name, slug)
	VALUES ('Plomberie', 'plomberie'),
		('Électricité', 'electricite'),
		('Serrurerie', 'serrurerie'),
		('Peinture', 'peinture')
	ON CONFLICT (slug) DO NOTHING
`

// Migrate applies the embedded schema files in name order and seeds the
// service categories. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}

	if _, err := db.ExecContext(ctx, seedCategories); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}
