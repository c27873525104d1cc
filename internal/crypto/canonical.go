package crypto

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"postboard/internal/domain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core Deterministic Encoding: the same Post always yields the same bytes.
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// MarshalPost returns the canonical encoding of p.
func MarshalPost(p domain.Post) ([]byte, error) {
	return encMode.Marshal(p)
}

// UnmarshalPost decodes a canonical post body.
func UnmarshalPost(b []byte) (domain.Post, error) {
	var p domain.Post
	if err := decMode.Unmarshal(b, &p); err != nil {
		return domain.Post{}, fmt.Errorf("decode post: %w", err)
	}
	return p, nil
}

// MarshalEnvelope encodes a signed post for the wire.
func MarshalEnvelope(sp domain.SignedPost) ([]byte, error) {
	return encMode.Marshal(sp)
}

// UnmarshalEnvelope decodes a signed post read from the wire.
func UnmarshalEnvelope(b []byte) (domain.SignedPost, error) {
	var sp domain.SignedPost
	if err := decMode.Unmarshal(b, &sp); err != nil {
		return domain.SignedPost{}, fmt.Errorf("decode envelope: %w", err)
	}
	return sp, nil
}
