// Package snapshot stores small opaque values keyed by (namespace, key). Namespaces scope
// values to one visitor or CLI profile.
package snapshot

import "context"

type Repository interface {
	// Get returns domain.ErrNotFound when nothing was stored under (namespace, key).
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}
