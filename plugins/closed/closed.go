// Package closed provides a dispatch plugin that skips receivers whose
// target has been torn down but not yet collected.
package closed

import "github.com/specialistvlad/dispatchgo/dispatch"

// Closer is implemented by method receiver targets that can be shut down
// before the garbage collector reclaims them.
type Closer interface {
	Closed() bool
}

// Plugin vetoes method receivers whose target reports Closed.
type Plugin struct {
	dispatch.BasePlugin
}

// New returns a Plugin.
func New() *Plugin {
	return &Plugin{}
}

// IsLive reports false for receivers bound to a closed target.
func (p *Plugin) IsLive(r *dispatch.Receiver) bool {
	if c, ok := r.Target().(Closer); ok {
		return !c.Closed()
	}
	return true
}
