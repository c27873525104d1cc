package types

// UserID names a user in the key-store namespace.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// Broadcast is the recipient id meaning "no encryption, visible to all".
const Broadcast UserID = "all"
