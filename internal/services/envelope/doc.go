// Package envelope applies and checks the cryptographic envelope of a post.
//
// Encryption is per recipient (RSA PKCS#1 v1.5, base64 text) and optional:
// posts to domain.Broadcast are never encrypted. Signing is mandatory for
// every post and covers the canonical encoding of the whole Post.
//
// Every operation resolves keys through a domain.KeyStore at call time; the
// service keeps no key material of its own.
//
// # Decrypt policy
//
// Decrypt never fails. When the owner has no private key, the text is not
// base64, or the ciphertext was not made for this key, it returns its input
// unchanged so history display can continue. Open is the same operation with
// an explicit ok flag for callers that need to tell the cases apart.
package envelope
