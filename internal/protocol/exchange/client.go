package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/op/go-logging.v1"

	"postboard/internal/domain"
	"postboard/internal/wire"
)

const (
	questionPost      = "Do you want to add a post?"
	questionRecipient = `Enter the recipient userid (type "all" for posting without encryption):`
	questionMessage   = "Enter your message:"
)

// PostService builds outgoing posts and renders incoming ones.
type PostService interface {
	Compose(author, recipient domain.UserID, text string) (domain.SignedPost, error)
	Render(index int, owner domain.UserID, sp domain.SignedPost) domain.PostView
}

// Client is the client role of the exchange for one local user.
type Client struct {
	user   domain.UserID
	posts  PostService
	prompt domain.Prompter
	render domain.Renderer
	log    *logging.Logger
}

// NewClient returns a Client acting as user.
func NewClient(user domain.UserID, posts PostService, prompt domain.Prompter, render domain.Renderer, log *logging.Logger) *Client {
	return &Client{user: user, posts: posts, prompt: prompt, render: render, log: log}
}

// Run performs one exchange on c. Cancelling ctx closes c.
func (cl *Client) Run(ctx context.Context, c *wire.Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	st := Connected
	enter := func(next State) {
		cl.log.Debugf("%v -> %v", st, next)
		st = next
	}
	defer enter(Closed)

	enter(ReceivingHistory)
	if err := cl.receiveHistory(c); err != nil {
		return err
	}

	enter(AwaitingContinueDecision)
	yes, err := cl.prompt.Confirm(questionPost)
	if err != nil {
		return errors.Join(fmt.Errorf("prompt: %w", err), cl.decline(c))
	}
	if !yes {
		return cl.decline(c)
	}

	sp, err := cl.compose()
	if err != nil {
		// Nothing has been sent yet, so a "no" still ends the session cleanly.
		return errors.Join(err, cl.decline(c))
	}

	enter(SendingNewPost)
	if err := c.WriteBool(true); err != nil {
		return fmt.Errorf("write continue flag: %w", err)
	}
	if err := c.WriteString(cl.user.String()); err != nil {
		return fmt.Errorf("write author id: %w", err)
	}
	if err := c.WriteEnvelope(sp); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	cl.log.Infof("Post sent")
	return nil
}

func (cl *Client) receiveHistory(c *wire.Conn) error {
	n, err := c.ReadCount()
	if err != nil {
		return fmt.Errorf("read post count: %w", err)
	}
	cl.render.RenderCount(int(n))

	for i := 0; i < int(n); i++ {
		sp, err := c.ReadEnvelope()
		if err != nil {
			return fmt.Errorf("read post %d of %d: %w", i, n, err)
		}
		cl.render.RenderPost(cl.posts.Render(i, cl.user, sp))
	}
	return nil
}

func (cl *Client) compose() (domain.SignedPost, error) {
	recipient, err := cl.prompt.Ask(questionRecipient)
	if err != nil {
		return domain.SignedPost{}, fmt.Errorf("prompt: %w", err)
	}
	text, err := cl.prompt.Ask(questionMessage)
	if err != nil {
		return domain.SignedPost{}, fmt.Errorf("prompt: %w", err)
	}
	return cl.posts.Compose(cl.user, domain.UserID(strings.TrimSpace(recipient)), text)
}

func (cl *Client) decline(c *wire.Conn) error {
	if err := c.WriteBool(false); err != nil {
		return fmt.Errorf("write continue flag: %w", err)
	}
	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
