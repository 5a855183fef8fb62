package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate runs every pending up migration under migrationsDir (a
// directory containing one subdirectory per driver name, e.g.
// "<migrationsDir>/postgres") against dataSourceName.
func Migrate(migrationsDir, dataSourceName string) (err error) {
	if !strings.Contains(dataSourceName, "://") {
		err = errors.New("store: undefined data source name " + dataSourceName)
		return
	}
	driverName := strings.ToLower(strings.Split(dataSourceName, "://")[0])

	migrations, err := migrate.New(fmt.Sprintf("file://%s/%s", migrationsDir, driverName), dataSourceName)
	if err != nil {
		return
	}

	if err = migrations.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
	}

	return
}
