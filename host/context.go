// Package host carries the per-guest execution state and the wazero-backed
// executor that runs guest components against it.
package host

import (
	"github.com/corral-dev/corral-host-sdk/capability"
)

// Instance is the host-side state of one running guest: the capability
// handler shared with the embedder, the three stdio multiplexers, and the
// table of guest-visible resource handles. An Instance is created per
// instantiation and discarded when the guest terminates; only the embedder
// rebinds its streams or capabilities.
type Instance struct {
	Handler   *capability.Handler
	Stdin     *StdinStream
	Stdout    *StdoutStream
	Stderr    *StdoutStream
	Resources *ResourceTable
}

// NewInstance creates an instance around a handler. A nil handler gets a
// fresh one with nothing configured.
func NewInstance(h *capability.Handler) *Instance {
	if h == nil {
		h = capability.NewHandler()
	}
	return &Instance{
		Handler:   h,
		Stdin:     NewStdinStream(),
		Stdout:    NewStdoutStream(),
		Stderr:    NewStdoutStream(),
		Resources: NewResourceTable(),
	}
}
