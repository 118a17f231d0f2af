// Package cli wires the notifier binary: the cobra command tree, the serve
// command that assembles the HTTP server, and the operator commands for
// checking and exercising the mail relay.
package cli
