package store_test

import (
	"errors"
	"testing"

	"postboard/internal/domain"
	"postboard/internal/store"
	"postboard/internal/testutil"
)

func TestCachedKeyStore_LoadsPrivateKeyOnce(t *testing.T) {
	backing := testutil.NewCountingKeyRing(testutil.Keyring(t, "alice"))
	ks := store.NewCachedKeyStore(backing)

	want := testutil.Key(t, "alice")
	for i := 0; i < 20; i++ {
		got, err := ks.LoadPrivateKey("alice")
		if err != nil {
			t.Fatalf("LoadPrivateKey: %v", err)
		}
		if !got.Equal(want) {
			t.Fatal("cached key differs from stored key")
		}
	}
	if n := backing.Loads("alice"); n != 1 {
		t.Fatalf("backing store loads = %d, want 1", n)
	}
}

func TestCachedKeyStore_CachesMissing(t *testing.T) {
	backing := testutil.NewCountingKeyRing(testutil.Keyring(t))
	ks := store.NewCachedKeyStore(backing)

	for i := 0; i < 3; i++ {
		if _, err := ks.LoadPrivateKey("nobody"); !errors.Is(err, domain.ErrKeyNotFound) {
			t.Fatalf("LoadPrivateKey(nobody) = %v, want ErrKeyNotFound", err)
		}
		if _, err := ks.LoadPublicKey("nobody"); !errors.Is(err, domain.ErrKeyNotFound) {
			t.Fatalf("LoadPublicKey(nobody) = %v, want ErrKeyNotFound", err)
		}
	}
	if n := backing.Loads("nobody"); n != 1 {
		t.Fatalf("backing store loads = %d, want 1", n)
	}
}

func TestCachedKeyStore_SealedKey(t *testing.T) {
	const passphrase = "Str0ng&Passphrase"
	priv := testutil.Key(t, "bob")

	fs := store.NewFileKeyStore(t.TempDir(), passphrase)
	if err := fs.SavePrivateKey("bob", priv); err != nil {
		t.Fatalf("SavePrivateKey: %v", err)
	}
	backing := testutil.NewCountingKeyRing(fs)
	ks := store.NewCachedKeyStore(backing)

	for i := 0; i < 5; i++ {
		got, err := ks.LoadPrivateKey("bob")
		if err != nil {
			t.Fatalf("LoadPrivateKey: %v", err)
		}
		if !got.Equal(priv) {
			t.Fatal("unsealed key differs")
		}
	}
	if n := backing.Loads("bob"); n != 1 {
		t.Fatalf("sealed key opened %d times, want 1", n)
	}
}
