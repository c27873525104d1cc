// Package identity inspects and re-protects the RSA key pairs users sign and
// receive posts with.
//
// It enforces the passphrase policy for sealed private keys and copies key
// pairs between domain.KeyRing instances, which is how a key is sealed under
// a new passphrase or moved to another backend.
package identity
