package lnd

import (
	"github.com/lumenwallet/lumen/internal/activity"
)

// Factory creates activity sources. The CLI layer uses the default factory
// to build REST clients from configuration; tests substitute fakes so
// commands can run without a node.
type Factory interface {
	// NewSource creates an activity source for the given options.
	NewSource(opts *ClientOptions) activity.Source
}

// DefaultFactory creates real lnd REST clients.
type DefaultFactory struct{}

// NewDefaultFactory creates a new default factory.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{}
}

// NewSource creates an lnd REST client for the given options.
func (f *DefaultFactory) NewSource(opts *ClientOptions) activity.Source {
	return NewClient(opts)
}

// Compile-time interface check
var _ Factory = (*DefaultFactory)(nil)
