package interfaces

import "postboard/internal/domain/types"

// Prompter collects operator input for the client.
type Prompter interface {
	Confirm(question string) (bool, error)
	Ask(question string) (string, error)
}

// Renderer displays received history.
type Renderer interface {
	RenderCount(n int)
	RenderPost(v types.PostView)
}
