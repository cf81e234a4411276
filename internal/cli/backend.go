package cli

import (
	"fmt"
	"log/slog"

	"github.com/roach88/ephemera/internal/broker"
)

// ValidBackends defines the selectable broker backends.
var ValidBackends = []string{"memory", "sqlite", "badger"}

// openBroker opens the selected broker backend. The store path is required
// for the durable backends and ignored for memory.
func openBroker(backend, store string) (broker.Broker, error) {
	switch backend {
	case "memory":
		return broker.NewMemory(), nil
	case "sqlite":
		if store == "" {
			return nil, fmt.Errorf("backend sqlite requires --store")
		}
		return broker.OpenSQLite(store)
	case "badger":
		if store == "" {
			return nil, fmt.Errorf("backend badger requires --store")
		}
		return broker.OpenBadger(broker.BadgerConfig{
			Path:       store,
			SyncWrites: true,
			Logger:     slog.Default(),
		})
	default:
		return nil, fmt.Errorf("invalid backend %q: must be one of %v", backend, ValidBackends)
	}
}
