package interfaces

import "context"

// Storage is a durable string key-value store partitioned by scope.
// A scope plays the role of one browser origin: keys never leak between scopes.
type Storage interface {
	// Get returns ok=false when the key has never been written in scope
	Get(ctx context.Context, scope, key string) (value string, ok bool, err error)
	Set(ctx context.Context, scope, key, value string) error
}
