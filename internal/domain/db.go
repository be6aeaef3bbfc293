package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Migrate creates or upgrades the schema and is safe to call on every start.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
