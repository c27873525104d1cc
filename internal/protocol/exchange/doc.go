// Package exchange runs the postboard exchange over one framed connection.
//
// # Flow
//
// Server, per connection:
//  1. Send the history: the post count, then one envelope per stored post, all
//     taken from a single store snapshot so the count always matches.
//  2. Read the continue flag.
//  3. If set, read the claimed author id and one envelope, verify it, and
//     append the post on success. Rejected posts are logged and dropped; the
//     session still ends normally.
//
// Client, per connection:
//  1. Read the count and exactly that many envelopes, rendering each one
//     (verified when possible, decrypted when addressed to the local user).
//  2. Ask whether to post. On yes, compose and sign the post, then send the
//     flag, the author id and the envelope. On no, send the flag only.
//
// Either side closes the connection afterwards. A server accepts at most one
// post per connection.
//
// # Errors
//
// Transport and framing errors end the session and are returned to the
// caller. KeyNotFound and InvalidSignature on the server are not errors of
// the session; on the client they abort before anything but a "no" is sent.
package exchange
