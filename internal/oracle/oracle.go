// Package oracle talks to the generative backend that writes documentation
// pages. A Session holds one conversation; Client layers the documentation
// protocol (format definition, codebase upload, section requests, change
// submission) on top of it.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Session is one conversation with cumulative context. Send appends the
// prompt and the reply to the conversation; Reset starts a new one.
type Session interface {
	Send(ctx context.Context, prompt string) (string, error)
	Reset()
}

// Error wraps a backend failure with the protocol step that hit it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("oracle %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// ErrEmptyResponse is returned when the backend answers with no candidate.
var ErrEmptyResponse = errors.New("empty response")

// Client drives a Session through the documentation protocol.
type Client struct {
	session Session
	log     *slog.Logger
}

// NewClient wraps s. A nil logger falls back to slog.Default().
func NewClient(s Session, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{session: s, log: log}
}

// Reset drops all context accumulated in the session.
func (c *Client) Reset() {
	c.session.Reset()
	c.log.Debug("oracle session reset")
}

func (c *Client) send(ctx context.Context, op, prompt string) (string, error) {
	reply, err := c.session.Send(ctx, prompt)
	if err != nil {
		return "", &Error{Op: op, Err: err}
	}
	return reply, nil
}

// DefineFormat tells the backend how every page must be shaped.
func (c *Client) DefineFormat(ctx context.Context) error {
	if _, err := c.send(ctx, "define-format", formatPrompt); err != nil {
		return err
	}
	c.log.Info("page format defined")
	return nil
}

// SendCodebase uploads the full codebase document as baseline context.
func (c *Client) SendCodebase(ctx context.Context, codebase string) error {
	if _, err := c.send(ctx, "send-codebase", codebasePrompt(codebase)); err != nil {
		return err
	}
	c.log.Info("codebase sent", "bytes", len(codebase))
	return nil
}

// SendExistingDocs uploads the current documentation as context for an
// update run.
func (c *Client) SendExistingDocs(ctx context.Context, project, docs string) error {
	if _, err := c.send(ctx, "send-existing-docs", existingDocsPrompt(project, docs)); err != nil {
		return err
	}
	c.log.Info("existing documentation sent", "project", project, "bytes", len(docs))
	return nil
}

// SubmitChangeDocument sends one aggregated change document and returns the
// backend's acknowledgement.
func (c *Client) SubmitChangeDocument(ctx context.Context, doc string) (string, error) {
	ack, err := c.send(ctx, "submit-changes", doc)
	if err != nil {
		return "", err
	}
	c.log.Info("change document submitted", "bytes", len(doc))
	return ack, nil
}

// RequestSection asks for the page of one section. language is the label of
// the target language, or "" to leave the language implicit. update selects
// the wording that refers to the submitted changes instead of the codebase.
func (c *Client) RequestSection(ctx context.Context, title, description, language string, update bool) (string, error) {
	page, err := c.send(ctx, "request-section", sectionPrompt(title+": "+description, language, update))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(page) == "" {
		c.log.Warn("empty page returned", "section", title)
	}
	return page, nil
}
