// Package commands defines the board CLI and wires dependencies for subcommands.
//
// Commands
//
//   - board <host> <port> <user>  Show the board and optionally post to it
//   - seal <user>                 Re-protect <user>'s private key with a passphrase
//   - fingerprint <user>          Print the fingerprint of <user>'s public key
//
// # Implementation
//
// The root command resolves the configuration (file, environment, flags) and
// opens the key ring before any command runs. When the user's private key is
// sealed and no passphrase was given, an interactive terminal is asked for it.
package commands
