// Package crypto exposes the minimal primitives used by postboard.
//
// Contents
//
//   - RSA PKCS#1 v1.5 encryption and decryption (EncryptPKCS1v15,
//     DecryptPKCS1v15)
//   - RSA PKCS#1 v1.5 signatures over SHA-256 (Sign, Verify)
//   - Canonical CBOR encoding of posts and envelopes (MarshalPost,
//     UnmarshalPost, MarshalEnvelope, UnmarshalEnvelope)
//   - PEM encoding of key pairs (MarshalPublicKeyPEM, ParsePublicKeyPEM, ...)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Encryption output is randomized by the padding, so two encryptions of the
// same message differ. Signatures are deterministic.
package crypto
