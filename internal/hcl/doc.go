// Package hcl implements config.Loader for playbooks written in HCL.
//
// Blocks are read in source order, so a file is a script:
//
//	receiver "printer" {
//	  kind   = "print"
//	  params = ["message"]
//	}
//
//	connect "printer" {
//	  signal = "ping"
//	  sender = any
//	}
//
//	send {
//	  signal = "ping"
//	  named  = { message = "hello" }
//	}
//
// The variables all, any and anonymous evaluate to the reserved names that
// stand for the dispatch sentinels. The functions upper, lower and format are
// available in expressions.
package hcl
