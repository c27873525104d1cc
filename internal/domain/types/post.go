package types

// Post is one authored message.
//
// AuthorID and Timestamp are fixed at construction. Payload is plaintext for
// broadcast posts and base64 ciphertext otherwise. The integer keys define the
// canonical encoding that signatures are computed over.
type Post struct {
	AuthorID  UserID `cbor:"1,keyasint" json:"author_id"`
	Payload   string `cbor:"2,keyasint" json:"payload"`
	Timestamp string `cbor:"3,keyasint" json:"timestamp"`
}

// SignedPost is the authenticated envelope that travels on the wire.
//
// Body holds the canonical encoding of the Post and Signature covers exactly
// those bytes, so a verifier never has to re-serialize anything.
type SignedPost struct {
	Signer    UserID `cbor:"1,keyasint" json:"signer"`
	Body      []byte `cbor:"2,keyasint" json:"body"`
	Signature []byte `cbor:"3,keyasint" json:"signature"`
}

// StoredPost is a verified post held by the server together with the envelope
// it arrived in.
type StoredPost struct {
	Post     Post
	Envelope SignedPost
}

// PostView is the client-local rendering of a received post. It is never
// serialized back onto the wire.
type PostView struct {
	Index     int
	Author    UserID
	Timestamp string
	Text      string

	// Decrypted reports whether Text came out of a successful decryption.
	Decrypted bool
	// Verified reports whether the envelope signature was checked and valid.
	Verified bool
}
