package content

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/logger"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true, Encoder: "console", LogLevel: "error"})
	l.InitLogger()
	return l
}

type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, maxWords int) (string, error) {
	p.calls++
	return p.response, p.err
}

func TestTemplateContentWithoutProvider(t *testing.T) {
	svc := NewContentService(testLogger(), nil, rand.New(rand.NewSource(1)))

	got := svc.GenerateWarmupContent(context.Background(), "Alice", "Bob")

	assert.NotEmpty(t, got.Subject)
	assert.Contains(t, got.BodyText, "Bob")
	assert.Contains(t, got.BodyText, "Alice")
	assert.Contains(t, got.BodyHTML, "<p>")
	assert.False(t, got.AIGenerated)
	assert.Empty(t, got.AIProvider)
}

func TestAIContentUsedWhenProviderSucceeds(t *testing.T) {
	provider := &fakeProvider{response: "SUBJECT: Coffee next week?\n\nHey Bob,\n\nAre you free Tuesday?\n\nAlice"}
	svc := NewContentService(testLogger(), provider, rand.New(rand.NewSource(1)))

	got := svc.GenerateWarmupContent(context.Background(), "Alice", "Bob")

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "Coffee next week?", got.Subject)
	assert.Contains(t, got.BodyText, "Are you free Tuesday?")
	assert.True(t, got.AIGenerated)
	assert.Equal(t, "fake", got.AIProvider)
}

func TestTemplateFallbackOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := NewContentService(testLogger(), provider, rand.New(rand.NewSource(1)))

	got := svc.GenerateWarmupContent(context.Background(), "Alice", "Bob")

	assert.Equal(t, 1, provider.calls)
	assert.NotEmpty(t, got.Subject)
	assert.False(t, got.AIGenerated)
}

func TestTemplateFallbackOnMalformedCompletion(t *testing.T) {
	provider := &fakeProvider{response: "no subject line here"}
	svc := NewContentService(testLogger(), provider, rand.New(rand.NewSource(1)))

	got := svc.GenerateWarmupContent(context.Background(), "Alice", "Bob")

	assert.False(t, got.AIGenerated)
	assert.Contains(t, got.BodyText, "Alice")
}

func TestReplySubjectPrefixing(t *testing.T) {
	svc := NewContentService(testLogger(), nil, rand.New(rand.NewSource(1)))

	got := svc.GenerateReplyContent(context.Background(), "Quick question for you", "body", "Alice")
	assert.Equal(t, "Re: Quick question for you", got.Subject)

	already := svc.GenerateReplyContent(context.Background(), "Re: Quick question for you", "body", "Alice")
	assert.Equal(t, "Re: Quick question for you", already.Subject)
}

func TestReplyTemplateMentionsReplier(t *testing.T) {
	svc := NewContentService(testLogger(), nil, rand.New(rand.NewSource(3)))

	got := svc.GenerateReplyContent(context.Background(), "Hello", "body", "Alice")
	assert.Contains(t, got.BodyText, "Alice")
	assert.False(t, got.AIGenerated)
}

func TestAIReplyTruncatesQuotedBody(t *testing.T) {
	provider := &fakeProvider{response: "Sounds good, talk soon!"}
	svc := NewContentService(testLogger(), provider, rand.New(rand.NewSource(1)))

	long := strings.Repeat("x", 1000)
	got := svc.GenerateReplyContent(context.Background(), "Hello", long, "Alice")

	assert.True(t, got.AIGenerated)
	assert.Equal(t, "Sounds good, talk soon!", got.BodyText)
}

func TestSplitSubjectBody(t *testing.T) {
	subject, body := splitSubjectBody("SUBJECT: Hi there\n\nBody text")
	assert.Equal(t, "Hi there", subject)
	assert.Equal(t, "Body text", body)

	subject, body = splitSubjectBody("Subject: Lower prefix\nBody")
	assert.Equal(t, "Lower prefix", subject)
	assert.Equal(t, "Body", body)

	subject, body = splitSubjectBody("only one line")
	require.Equal(t, "only one line", subject)
	assert.Empty(t, body)
}

func TestTextToHTML(t *testing.T) {
	assert.Equal(t, "<p>Hi Bob</p><p>Bye<br>Alice</p>", textToHTML("Hi Bob\n\nBye\nAlice"))
}
