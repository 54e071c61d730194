package content

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/tracing"
)

const (
	warmupMaxWords = 200
	replyMaxWords  = 60
	// The reply prompt only quotes the head of the original body.
	replyQuoteLimit = 300
)

type contentService struct {
	log      logger.Logger
	provider interfaces.ContentProvider

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewContentService wires the template banks with an optional AI provider.
// rng may be nil outside tests.
func NewContentService(log logger.Logger, provider interfaces.ContentProvider, rng *rand.Rand) interfaces.ContentService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &contentService{
		log:      log,
		provider: provider,
		rng:      rng,
	}
}

func (s *contentService) pick(options []string) string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return options[s.rng.Intn(len(options))]
}

func (s *contentService) GenerateWarmupContent(ctx context.Context, senderName, receiverName string) *interfaces.WarmupContent {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ContentService.GenerateWarmupContent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	category := s.pick(contentCategories)
	span.SetTag("category", category)

	if s.provider != nil {
		if generated := s.generateWithAI(ctx, category, senderName, receiverName); generated != nil {
			return generated
		}
	}

	subject := s.pick(subjectTemplates[category])
	bodyText := renderTemplate(s.pick(bodyTemplates[category]), senderName, receiverName)
	return &interfaces.WarmupContent{
		Subject:  subject,
		BodyText: bodyText,
		BodyHTML: textToHTML(bodyText),
	}
}

func (s *contentService) GenerateReplyContent(ctx context.Context, originalSubject, originalBody, replierName string) *interfaces.WarmupContent {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ContentService.GenerateReplyContent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	subject := originalSubject
	if !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}

	if s.provider != nil {
		if generated := s.generateReplyWithAI(ctx, subject, originalSubject, originalBody, replierName); generated != nil {
			return generated
		}
	}

	bodyText := renderTemplate(s.pick(replyTemplates), replierName, "")
	return &interfaces.WarmupContent{
		Subject:  subject,
		BodyText: bodyText,
		BodyHTML: textToHTML(bodyText),
	}
}

func (s *contentService) generateWithAI(ctx context.Context, category, senderName, receiverName string) *interfaces.WarmupContent {
	systemPrompt := "You are writing a casual internal business email. Keep it under " +
		strconv.Itoa(warmupMaxWords) + " words. Category: " + category
	userPrompt := "Write a casual email from " + senderName + " to " + receiverName +
		". Return SUBJECT: on first line, then blank line, then body."

	raw, err := s.provider.Generate(ctx, systemPrompt, userPrompt, warmupMaxWords)
	if err != nil {
		s.log.Warnf("AI warmup content generation failed, falling back to templates: %v", err)
		return nil
	}

	subject, body := splitSubjectBody(raw)
	if subject == "" || body == "" {
		s.log.Warn("AI warmup content came back malformed, falling back to templates")
		return nil
	}
	return &interfaces.WarmupContent{
		Subject:     subject,
		BodyText:    body,
		BodyHTML:    textToHTML(body),
		AIGenerated: true,
		AIProvider:  s.provider.Name(),
	}
}

func (s *contentService) generateReplyWithAI(ctx context.Context, subject, originalSubject, originalBody, replierName string) *interfaces.WarmupContent {
	quoted := originalBody
	if len(quoted) > replyQuoteLimit {
		quoted = quoted[:replyQuoteLimit]
	}
	systemPrompt := "You are writing a brief, casual reply to an internal business email. Keep it under " +
		strconv.Itoa(replyMaxWords) + " words. Be natural and conversational."
	userPrompt := "Write a short reply from " + replierName + " to this email:\n\nSubject: " +
		originalSubject + "\n" + quoted + "\n\nJust the reply body, no subject line."

	body, err := s.provider.Generate(ctx, systemPrompt, userPrompt, replyMaxWords)
	if err != nil {
		s.log.Warnf("AI reply generation failed, falling back to templates: %v", err)
		return nil
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return &interfaces.WarmupContent{
		Subject:     subject,
		BodyText:    body,
		BodyHTML:    textToHTML(body),
		AIGenerated: true,
		AIProvider:  s.provider.Name(),
	}
}

// splitSubjectBody parses the "SUBJECT: ...\n\nbody" completion shape.
func splitSubjectBody(raw string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(raw), "\n", 2)
	subject := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(parts[0], "SUBJECT:"), "Subject:"))
	body := ""
	if len(parts) > 1 {
		body = strings.TrimSpace(parts[1])
	}
	return subject, body
}
