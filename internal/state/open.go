package state

import "fmt"

// Compile-time verification that both backends implement Store.
var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)

// OpenStore opens the backend named by driver and applies migrations.
// driver is "sqlite", "sqlite3" or "memory"; path is ignored for memory.
func OpenStore(driver, path string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		db, err := OpenWithDriver(driver, path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
