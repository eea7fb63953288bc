package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientProtocol(t *testing.T) {
	ctx := context.Background()
	fake := &Fake{}
	c := NewClient(fake, nil)

	require.NoError(t, c.DefineFormat(ctx))
	require.NoError(t, c.SendCodebase(ctx, "# File: main.go\n\npackage main\n"))
	page, err := c.RequestSection(ctx, "Intro", "what this is", "", false)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Intro\ndescription: Intro: what this is\n---\n\nIntro: what this is\n", page)

	prompts := fake.Prompts()
	require.Len(t, prompts, 3)
	assert.Contains(t, prompts[0], "title: Example Guide")
	assert.Contains(t, prompts[1], "package main")
	assert.Contains(t, prompts[2], "please create a documentation document")
	assert.NotContains(t, prompts[2], "language")

	c.Reset()
	assert.Equal(t, 1, fake.Resets())
	assert.Empty(t, fake.History())
	assert.Len(t, fake.Prompts(), 3)
}

func TestSectionPromptWording(t *testing.T) {
	p := sectionPrompt("Setup: install it", "Deutsch", true)
	assert.Contains(t, p, "please recreate a documentation document")
	assert.Contains(t, p, "based on the changes in the codebase sent")
	assert.Contains(t, p, "in the Deutsch language:\nSetup: install it\n")
}

func TestExistingDocsAndChanges(t *testing.T) {
	ctx := context.Background()
	fake := &Fake{Respond: func(string) (string, error) { return "ok", nil }}
	c := NewClient(fake, nil)

	require.NoError(t, c.SendExistingDocs(ctx, "demo", "# Directory: \n# File: a.md\n\nx\n\n"))
	ack, err := c.SubmitChangeDocument(ctx, "File: a.txt\n")
	require.NoError(t, err)
	assert.Equal(t, "ok", ack)

	prompts := fake.Prompts()
	assert.True(t, strings.HasPrefix(prompts[0], "Here is the existing documentation for the project 'demo'."))
	assert.Equal(t, "File: a.txt\n", prompts[1])
}

func TestBackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := NewClient(&Fake{Respond: func(string) (string, error) { return "", boom }}, nil)

	_, err := c.RequestSection(context.Background(), "Intro", "d", "", false)
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "request-section", oerr.Op)
	assert.ErrorIs(t, err, boom)

	empty := NewClient(&Fake{Respond: func(string) (string, error) { return "  \n", nil }}, nil)
	page, err := empty.RequestSection(context.Background(), "Intro", "d", "", false)
	require.NoError(t, err)
	assert.Equal(t, "  \n", page)
}

func TestFakeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Fake{}).Send(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerationConfig(t *testing.T) {
	gen := generationConfig(DefaultGeminiConfig())
	require.NotNil(t, gen.Temperature)
	assert.InDelta(t, 0.8, *gen.Temperature, 1e-6)
	require.NotNil(t, gen.TopK)
	assert.InDelta(t, 50, *gen.TopK, 1e-6)
	assert.EqualValues(t, 8192, gen.MaxOutputTokens)
	assert.Len(t, gen.SafetySettings, 4)

	bare := generationConfig(GeminiConfig{Model: "m"})
	assert.Nil(t, bare.Temperature)
	assert.Nil(t, bare.TopP)
}

func TestThrottled(t *testing.T) {
	fake := &Fake{}
	assert.Same(t, Session(fake), Throttled(fake, 0))

	s := Throttled(fake, 60)
	ctx := context.Background()
	_, err := s.Send(ctx, "first")
	require.NoError(t, err)

	// the burst is spent; a second call cannot fit before the deadline
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = s.Send(short, "second")
	assert.Error(t, err)
	assert.Equal(t, []string{"first"}, fake.Prompts())

	s.Reset()
	assert.Equal(t, 1, fake.Resets())
}
