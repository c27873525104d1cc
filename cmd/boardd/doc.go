// Command boardd runs the postboard server.
//
// Usage
//
//	boardd <port>
//
// The server listens on every interface at <port>. Each connection receives
// the full post history and may then submit one signed post, which is kept
// if its signature verifies against the claimed author's public key. Posts
// live in memory and are lost when the process exits.
//
// Configuration comes from an optional TOML file (-f), POSTBOARD_* environment
// variables and flags, in increasing order of precedence. The server only
// needs the public keys of posting users.
package main
