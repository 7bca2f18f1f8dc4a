package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("catalog: unknown database driver")

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded catalog migrations rooted at the
// migrations directory, one subdirectory per dialect ("sqlite/0001_*.sql").
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(fmt.Sprintf("catalog: migrations fs: %v", err))
	}
	return sub
}

// Open connects to the catalog database. sqlite/sqlite3 use go-sqlite3 and
// postgres/pgx use the pgx stdlib driver.
func Open(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("catalog: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "pgx":
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("catalog: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

type migrationRecord struct {
	bun.BaseModel `bun:"table:catalog_migrations"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Migrate applies the pending migrations for the database dialect and
// returns the names it ran.
func Migrate(ctx context.Context, db *bun.DB) ([]string, error) {
	dir := DriverSQLite
	if db.Dialect().Name() == dialect.PG {
		dir = DriverPostgres
	}

	if _, err := db.NewCreateTable().Model((*migrationRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("catalog: create migrations table: %w", err)
	}

	var applied []string
	if err := db.NewSelect().Model((*migrationRecord)(nil)).Column("name").Scan(ctx, &applied); err != nil {
		return nil, fmt.Errorf("catalog: list migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	files, err := fs.Glob(migrationsFS, path.Join("migrations", dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var ran []string
	for _, file := range files {
		name := path.Base(file)
		if done[name] {
			continue
		}
		script, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return ran, err
		}
		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, stmt := range statements(string(script)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			record := &migrationRecord{Name: name, AppliedAt: time.Now().UTC()}
			_, err := tx.NewInsert().Model(record).Exec(ctx)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("catalog: migration %s: %w", name, err)
		}
		ran = append(ran, name)
	}
	return ran, nil
}

func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
