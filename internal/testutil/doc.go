// Package testutil holds fixtures shared by postboard's package tests:
// generated key rings, a scripted Prompter and a recording Renderer.
package testutil
