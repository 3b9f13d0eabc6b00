package snapshot

import (
	"context"
	"sync"

	"souvenir-shop/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

// NewMemory returns a process-local store. Values do not survive a restart.
func NewMemory() Repository {
	return &memoryRepo{values: make(map[string]map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, namespace, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[namespace][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *memoryRepo) Put(_ context.Context, namespace, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns, ok := r.values[namespace]
	if !ok {
		ns = make(map[string][]byte)
		r.values[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, namespace, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values[namespace], key)
	return nil
}
