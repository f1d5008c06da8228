// Package transport provides the command and file-push channel the Topology
// Controller uses to drive every worker host: a short-lived subprocess
// execution primitive plus a bulk file upload, both authenticated and
// ordered.
package transport

import "context"

// Transport is the channel a controller uses to reach one worker host.
type Transport interface {
	// Exec runs command remotely and returns its combined stdout+stderr.
	// The call blocks until the remote process exits.
	Exec(ctx context.Context, command string) (output string, err error)

	// PushFile uploads local file content to remotePath on the worker.
	PushFile(ctx context.Context, remotePath string, content []byte) error

	// Close releases any held connection.
	Close() error
}
