// Package post builds outgoing posts and renders incoming ones for the client.
package post
