package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

// EncryptPKCS1v15 encrypts msg to pub.
func EncryptPKCS1v15(pub *rsa.PublicKey, msg []byte) ([]byte, error) {
	return rsa.EncryptPKCS1v15(rand.Reader, pub, msg)
}

// DecryptPKCS1v15 decrypts ct with priv.
func DecryptPKCS1v15(priv *rsa.PrivateKey, ct []byte) ([]byte, error) {
	return rsa.DecryptPKCS1v15(nil, priv, ct)
}

// Sign signs the SHA-256 digest of msg with priv.
func Sign(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	return rsa.SignPKCS1v15(nil, priv, stdcrypto.SHA256, digest[:])
}

// Verify reports whether sig is a valid signature of msg under pub.
func Verify(pub *rsa.PublicKey, msg, sig []byte) bool {
	digest := sha256.Sum256(msg)
	return rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, digest[:], sig) == nil
}
