// Package registry maps the receiver kinds a playbook may name ("print",
// "echo", ...) to the Go factories that build them.
//
// Modules register their kinds at startup. Before a playbook runs, the
// registry checks that every receiver definition names a known kind and
// only uses the settings that kind accepts, so mistakes surface with a
// hint before any signal is sent.
package registry
