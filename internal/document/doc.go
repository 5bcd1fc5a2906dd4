// Package document implements config.Loader for playbooks written as YAML or
// JSONC documents. Both formats share one shape:
//
//	receivers:
//	  - name: printer
//	    kind: print
//	    params: [message]
//	steps:
//	  - plugin: trace
//	  - connect: {receiver: printer, signal: ping, sender: "@any"}
//	  - send: {signal: ping, named: {message: hello}}
//	  - disconnect: {receiver: printer, signal: ping, sender: "@any"}
//	  - reset: {}
//
// Every step names exactly one action.
package document
