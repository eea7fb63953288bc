package oracle

import (
	"context"
	"strings"
	"sync"
)

// Fake is an offline Session. Unless Respond is set it answers every prompt
// with a minimal page whose body is the prompt's last non-empty line, so the
// same prompt always yields the same page.
type Fake struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
	history []string
	resets  int
}

// Send records prompt and returns the canned reply.
func (f *Fake) Send(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	var (
		reply string
		err   error
	)
	if f.Respond != nil {
		reply, err = f.Respond(prompt)
	} else {
		reply = fakePage(prompt)
	}
	if err != nil {
		return "", err
	}
	f.history = append(f.history, prompt)
	return reply, nil
}

// Reset forgets the conversation; the prompt log is kept.
func (f *Fake) Reset() {
	f.mu.Lock()
	f.history = nil
	f.resets++
	f.mu.Unlock()
}

// Prompts returns every prompt received since creation.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// History returns the prompts of the current conversation.
func (f *Fake) History() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.history...)
}

// Resets returns how many times Reset was called.
func (f *Fake) Resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func fakePage(prompt string) string {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	subject := strings.TrimSpace(lines[len(lines)-1])
	title := subject
	if i := strings.Index(subject, ":"); i > 0 {
		title = strings.TrimSpace(subject[:i])
	}
	return "---\ntitle: " + title + "\ndescription: " + subject + "\n---\n\n" + subject + "\n"
}
