package warmup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

// TrackingPixelURL builds the open-tracking pixel URL for a token.
func TrackingPixelURL(baseURL, trackingID string) string {
	return fmt.Sprintf("%s/t/%s/px.gif", strings.TrimRight(baseURL, "/"), trackingID)
}

// TrackedLinkURL wraps an outbound link through the click-redirect endpoint.
func TrackedLinkURL(baseURL, trackingID, originalURL string) string {
	return fmt.Sprintf("%s/t/%s/l?url=%s", strings.TrimRight(baseURL, "/"), trackingID, url.QueryEscape(originalURL))
}

// InjectTrackingPixel appends the 1x1 pixel to an HTML body, before </body>
// when present.
func InjectTrackingPixel(bodyHTML, trackingID, baseURL string) string {
	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none" alt="" />`, TrackingPixelURL(baseURL, trackingID))
	if strings.Contains(bodyHTML, "</body>") {
		return strings.Replace(bodyHTML, "</body>", pixel+"</body>", 1)
	}
	return bodyHTML + pixel
}

// RecordOpen marks the first pixel fetch for a tracking token and bumps the
// sender's open counter. Later fetches are no-ops.
func (s *Service) RecordOpen(ctx context.Context, trackingID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RecordOpen")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	email, err := s.repositories.WarmupEmailRepository.GetByTrackingID(ctx, trackingID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	first, err := s.repositories.WarmupEmailRepository.MarkOpened(ctx, email.ID, utils.Now())
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if first {
		if err := s.repositories.MailboxRepository.IncrementOpenCounter(ctx, email.SenderMailboxID); err != nil {
			s.log.Warnf("failed to bump open counter for %s: %v", email.SenderMailboxID, err)
		}
	}
	return nil
}

// RecordClick registers a click-through. A click implies an open.
func (s *Service) RecordClick(ctx context.Context, trackingID string) error {
	return s.RecordOpen(ctx, trackingID)
}
