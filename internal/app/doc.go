// Package app wires postboard's dependencies for the CLIs.
//
// It loads Config from TOML, the environment and flags, then builds the log
// backend, key ring, stores, services and transports from it. Commands use
// App to run the server or a client session without knowing how the pieces
// fit together.
package app
