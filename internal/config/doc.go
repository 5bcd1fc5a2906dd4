// Package config defines the format-agnostic playbook model and the Loader
// interface implemented by each playbook format.
//
// A playbook is an ordered script of receiver declarations and steps
// (plugin, connect, disconnect, send, reset) that the executor runs against a
// dispatch registry. Concrete loaders for HCL, YAML and JSONC live in
// separate packages and all produce a config.Model.
package config
