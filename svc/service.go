// Package svc defines the long-running service contract managed by conf.Core.
package svc

// Service is a background component such as the mapping watcher.
type Service interface {
	// Start launches the service. Only bootstrapping errors are returned.
	Start() error
	// Stop asks the service to shut down. It does not wait.
	Stop()
	// Done delivers the shutdown result, nil on a clean stop.
	// The core is the only consumer; services never close this channel.
	Done() <-chan error
	Name() string
}
