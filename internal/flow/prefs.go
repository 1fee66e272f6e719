package flow

import (
	"context"
	"sync"
)

// MemoryPreferences keeps preferences of many owners in process. It backs
// tests and single-instance runs without Redis.
type MemoryPreferences struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{data: make(map[string]map[string]string)}
}

func (m *MemoryPreferences) For(owner string) Preferences {
	return ownerMemory{m: m, owner: owner}
}

type ownerMemory struct {
	m     *MemoryPreferences
	owner string
}

func (o ownerMemory) Get(_ context.Context, key string) (string, bool, error) {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()
	v, ok := o.m.data[o.owner][key]
	return v, ok, nil
}

func (o ownerMemory) Set(_ context.Context, key, value string) error {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()
	if o.m.data[o.owner] == nil {
		o.m.data[o.owner] = make(map[string]string)
	}
	o.m.data[o.owner][key] = value
	return nil
}
