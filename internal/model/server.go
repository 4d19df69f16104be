package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener the HTTP server accepts connections on (plain TCP or TLS).
type SecurityLayer interface {
	Listen(network, address string) (net.Listener, error)
}

// Server is a long-running API server controlled by the process entrypoint.
type Server interface {
	// Start blocks serving on a listener obtained from sl until Stop is called.
	Start(sl SecurityLayer) error
	// Stop drains in-flight requests within ctx.
	Stop(ctx context.Context) error
	Address() string
}
