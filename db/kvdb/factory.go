package kvdb

import (
	"fmt"
	"sync"
)

// ClientFactory constructs a Client from Conf. Impl packages register one in init().
type ClientFactory func(conf *Conf) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]ClientFactory{}
)

func RegisterFactory(kvType string, factory ClientFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kvType] = factory
}

func New(kvType string, conf *Conf) (Client, error) {
	registryMu.RLock()
	factory, ok := registry[kvType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported kvdb type: %s", kvType)
	}
	return factory(conf)
}
