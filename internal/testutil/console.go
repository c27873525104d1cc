package testutil

import (
	"errors"
	"sync"

	"postboard/internal/domain"
)

// ErrScriptExhausted is returned when a Script has no answers left.
var ErrScriptExhausted = errors.New("testutil: script exhausted")

// Script is a Prompter that replays canned answers in order.
type Script struct {
	mu      sync.Mutex
	answers []string
	Asked   []string
}

// NewScript returns a Script that will answer with answers.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

// Confirm consumes the next answer and reports whether it was "y".
func (s *Script) Confirm(question string) (bool, error) {
	a, err := s.next(question)
	if err != nil {
		return false, err
	}
	return a == "y", nil
}

// Ask consumes the next answer.
func (s *Script) Ask(question string) (string, error) {
	return s.next(question)
}

func (s *Script) next(question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, question)
	if len(s.answers) == 0 {
		return "", ErrScriptExhausted
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

// Recorder is a Renderer that keeps everything it is given.
type Recorder struct {
	mu    sync.Mutex
	Count int
	Views []domain.PostView
}

// RenderCount records n.
func (r *Recorder) RenderCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Count = n
}

// RenderPost records v.
func (r *Recorder) RenderPost(v domain.PostView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Views = append(r.Views, v)
}

var (
	_ domain.Prompter = (*Script)(nil)
	_ domain.Renderer = (*Recorder)(nil)
)
