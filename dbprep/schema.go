// samurai.go - a Samurai Sudoku puzzle generator.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package dbprep

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// figure out the migrate parameters
func getMigrateParams() (url string, path string) {
	url = os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/samurai?sslmode=disable"
	}
	path = os.Getenv("DBPREP_PATH")
	if path == "" {
		if fi, err := os.Stat("dbprep"); err == nil && fi.IsDir() {
			// running from root directory
			path = "dbprep"
		} else {
			path = "."
		}
	}
	return
}

// migrateURL rewrites a postgres URL to select the migrate pgx
// driver, which registers under its own scheme.
func migrateURL(url string) string {
	if rest, ok := strings.CutPrefix(url, "postgres://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(url, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	return url
}

// newMigrate makes a migrator over the SQL files in the dbprep
// directory.  Callers are responsible for closing it.
func newMigrate() (*migrate.Migrate, error) {
	url, path := getMigrateParams()
	m, err := migrate.New("file://"+path, migrateURL(url))
	if err != nil {
		return nil, fmt.Errorf("Can't prepare migrations from %q: %v", path, err)
	}
	return m, nil
}

// SchemaUp creates the database with the right schema.  A schema
// that is already current is left alone.
func SchemaUp() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("Table creation had errors: %v", err)
	}
	return nil
}

// SchemaDown tears down the database.
func SchemaDown() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("Table deletion had errors: %v", err)
	}
	return nil
}

// SchemaVersion returns the version of the database, 0 when no
// migration has ever been applied.
func SchemaVersion() (uint64, error) {
	m, err := newMigrate()
	if err != nil {
		return 0, err
	}
	defer m.Close()
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("Can't read schema version: %v", err)
	}
	if dirty {
		return uint64(version), fmt.Errorf("Schema version %d was left dirty by a failed migration", version)
	}
	return uint64(version), nil
}
