// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/dctsteg/pkg/config"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API described by cfg until ctx is cancelled
	StartServer(ctx context.Context, cfg *config.Config) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
