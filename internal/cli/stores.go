package cli

import (
	"fmt"

	"github.com/lexigraph/lexigraph/internal/model"
	"github.com/lexigraph/lexigraph/internal/store"
)

// openStores opens the configured backend. The returned close func is a
// no-op for the memory backend.
func openStores(cfg *model.Config) (store.EntryStore, store.GraphStore, func() error, error) {
	switch cfg.Store.Backend {
	case "memory":
		mem := store.NewMemory()
		return mem, mem, func() error { return nil }, nil

	case "sqlite":
		db, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
		}
		return db, db, db.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
