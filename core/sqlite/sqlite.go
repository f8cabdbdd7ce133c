// Package sqlite opens SQLite databases through the pure Go
// modernc.org/sqlite driver, so no cgo toolchain is needed.
//
// Use Open or OpenReadOnly instead of sql.Open to get the right driver name.
package sqlite

import (
	"database/sql"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	driverName    = "sqlite"
	driverPackage = "modernc.org/sqlite"
)

// Open opens a SQLite database.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens a SQLite database file in read-only mode. The file is
// never created.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open("file:" + path + "?mode=ro")
}

// Info describes the SQLite driver in use.
type Info struct {
	DriverName string `json:"driver_name"`
	Package    string `json:"package"`
}

// GetInfo returns the driver configuration, reported by the CLI next to the
// backend types that read SQLite.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		Package:    driverPackage,
	}
}
