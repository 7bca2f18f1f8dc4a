package testsupport

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// SQLiteMemoryDSN names a shared-cache in-memory database so each test gets
// its own schema.
func SQLiteMemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewSQLiteMemoryDB opens the database named by SQLiteMemoryDSN. The caller
// closes it.
func NewSQLiteMemoryDB(name string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", SQLiteMemoryDSN(name))
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
