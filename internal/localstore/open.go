package localstore

import (
	"fmt"
	"path/filepath"
)

// Storage drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the Storage for driver. path is a directory for the file
// driver and the database directory for sqlite; memory ignores it.
func Open(driver, path string) (Storage, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStorage(path)
	case DriverSQLite:
		return NewSQLiteStorage(filepath.Join(path, "safgati.db"))
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown local storage driver %q", driver)
	}
}
