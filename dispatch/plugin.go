package dispatch

import "slices"

// Plugin customises dispatch on a registry.
//
// Before each invocation every installed plugin is asked whether the receiver
// is live; a single veto skips it. Each plugin then wraps the receiver's
// function, in installation order, so the last installed plugin runs first.
//
// Plugins are compared with ==, so they should be pointers.
type Plugin interface {
	IsLive(r *Receiver) bool
	WrapReceiver(r *Receiver, next Handler) Handler
}

// BasePlugin implements Plugin with no effect. Embed it to override only
// one of the methods.
type BasePlugin struct{}

// IsLive reports true.
func (BasePlugin) IsLive(*Receiver) bool { return true }

// WrapReceiver returns next unchanged.
func (BasePlugin) WrapReceiver(_ *Receiver, next Handler) Handler { return next }

// InstallPlugin adds p to the registry's plugin chain.
func (r *Registry) InstallPlugin(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = append(r.plugins, p)
	r.logger.Debug("Installed plugin.", "plugin", p)
}

// RemovePlugin removes p from the chain. It returns ErrPluginNotInstalled if
// p was never installed.
func (r *Registry) RemovePlugin(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.plugins, p)
	if i < 0 {
		return ErrPluginNotInstalled
	}
	r.plugins = slices.Delete(r.plugins, i, i+1)
	r.logger.Debug("Removed plugin.", "plugin", p)
	return nil
}

// Plugins returns the installed plugins in installation order.
func (r *Registry) Plugins() []Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.plugins)
}
