package interfaces

import "context"

type WarmupContent struct {
	Subject     string `json:"subject"`
	BodyHTML    string `json:"bodyHtml"`
	BodyText    string `json:"bodyText"`
	AIGenerated bool   `json:"aiGenerated"`
	AIProvider  string `json:"aiProvider"`
}

// ContentProvider is one AI backend able to draft warmup email copy.
type ContentProvider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxWords int) (string, error)
}

// ContentService produces warmup and reply content, degrading to templates on
// any provider failure.
type ContentService interface {
	GenerateWarmupContent(ctx context.Context, senderName, receiverName string) *WarmupContent
	GenerateReplyContent(ctx context.Context, originalSubject, originalBody, replierName string) *WarmupContent
}
