// Package delivery defines the contract shared by all transport servers.
package delivery

import "context"

// Delivery is a long-running transport endpoint, started by the application
// root and stopped through its lifecycle hooks.
type Delivery interface {
	// Serve blocks until the server stops or fails.
	Serve(ctx context.Context) error
}
