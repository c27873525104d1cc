// Package wire frames the postboard exchange over a single byte stream.
//
// Two logical channels share the stream and keep strict relative order: a
// control channel of counts, booleans and identifier strings, and an envelope
// channel of CBOR-encoded signed posts.
//
//	uint32    4 bytes, big-endian
//	bool      1 byte, 0x00 or 0x01
//	string    uint16 big-endian byte length, then UTF-8 bytes
//	envelope  uint32 big-endian byte length, then CBOR SignedPost
//
// Writes are buffered; callers Flush at the end of each protocol turn. Every
// read and write refreshes the connection deadline when a timeout is set.
// Malformed input is reported as ErrFraming.
package wire
