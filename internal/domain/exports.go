package domain

import (
	interfaces "postboard/internal/domain/interfaces"
	types "postboard/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UserID     = types.UserID
	Post       = types.Post
	SignedPost = types.SignedPost
	StoredPost = types.StoredPost
	PostView   = types.PostView
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyStore        = interfaces.KeyStore
	KeyWriter       = interfaces.KeyWriter
	KeyRing         = interfaces.KeyRing
	PostStore       = interfaces.PostStore
	EnvelopeService = interfaces.EnvelopeService
	Prompter        = interfaces.Prompter
	Renderer        = interfaces.Renderer
)

// Broadcast is the recipient id that disables payload encryption.
const Broadcast = types.Broadcast
