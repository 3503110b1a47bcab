package plugins

import (
	"fmt"
	"sort"

	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
)

// StoreFactory builds an advice log store from its configuration.
type StoreFactory func(cfg config.AdviceLogConfig) (logging.Store, error)

var adviceStores = map[string]StoreFactory{}

// RegisterAdviceStore adds a store factory for the given backend name.
func RegisterAdviceStore(name string, f StoreFactory) { adviceStores[name] = f }

// NewAdviceStore builds the store selected by cfg.Backend.
func NewAdviceStore(cfg config.AdviceLogConfig) (logging.Store, error) {
	f, ok := adviceStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown advice store backend %q (registered: %v)", cfg.Backend, StoreBackends())
	}
	return f(cfg)
}

// StoreBackends lists the registered backend names in sorted order.
func StoreBackends() []string {
	names := make([]string, 0, len(adviceStores))
	for n := range adviceStores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
