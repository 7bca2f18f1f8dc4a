package styleguide

import (
	"io/fs"

	"github.com/goliatone/go-styleguide/internal/catalog"
)

// GetMigrationsFS returns the embedded catalog migrations, one directory per
// SQL dialect.
func GetMigrationsFS() fs.FS {
	return catalog.MigrationsFS()
}
