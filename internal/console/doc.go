// Package console is the terminal side of the board client: it asks the user
// questions on stdin and prints the received history on stdout.
//
// Prompts are only printed when input comes from a terminal, so the client can
// be driven by a pipe without question text polluting its output.
package console
