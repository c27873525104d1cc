package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"postboard/internal/domain"
)

// ErrNoInput is returned by Ask when input ends before an answer.
var ErrNoInput = errors.New("console: no input")

// Console reads answers from in and writes prompts and posts to out.
type Console struct {
	in          *bufio.Reader
	fd          int
	out         io.Writer
	interactive bool
}

// New returns a Console on in and out. Prompts are shown when in is a
// terminal.
func New(in io.Reader, out io.Writer) *Console {
	c := &Console{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.interactive = true
	}
	return c
}

// Interactive reports whether input is a terminal.
func (c *Console) Interactive() bool { return c.interactive }

// Confirm asks a yes/no question. An interactive user is asked again until
// they answer; non-interactive input and end of input both count as no.
func (c *Console) Confirm(question string) (bool, error) {
	for {
		c.prompt(question + " [y/n] ")
		line, err := c.readLine()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if !c.interactive {
			return false, nil
		}
		fmt.Fprintln(c.out, "Please answer y or n.")
	}
}

// Ask returns the next line of input without its line terminator.
func (c *Console) Ask(question string) (string, error) {
	c.prompt(question + " ")
	line, err := c.readLine()
	if errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return line, err
}

// AskSecret is Ask without echo when input is a terminal.
func (c *Console) AskSecret(question string) (string, error) {
	if !c.interactive {
		return c.Ask(question)
	}
	c.prompt(question + " ")
	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("console: read secret: %w", err)
	}
	return string(b), nil
}

// RenderCount prints the history header.
func (c *Console) RenderCount(n int) {
	fmt.Fprintf(c.out, "There are %d post(s).\n", n)
}

// RenderPost prints one post.
func (c *Console) RenderPost(v domain.PostView) {
	sender := v.Author.String()
	if !v.Verified {
		sender += " (unverified)"
	}
	fmt.Fprintln(c.out, "--------- Post Start ---------")
	fmt.Fprintf(c.out, "Sender: %s\n", sender)
	fmt.Fprintf(c.out, "Date: %s\n", v.Timestamp)
	fmt.Fprintf(c.out, "Message: %s\n", v.Text)
	fmt.Fprintln(c.out, "---------  Post End  ---------")
}

func (c *Console) prompt(s string) {
	if c.interactive {
		fmt.Fprint(c.out, s)
	}
}

// readLine returns io.EOF only when no data precedes the end of input.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

var (
	_ domain.Prompter = (*Console)(nil)
	_ domain.Renderer = (*Console)(nil)
)
