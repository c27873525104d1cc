package store_test

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
)

func x509MarshalPKCS1(priv *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
}
