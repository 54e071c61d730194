package warmup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/enum"
)

func TestInjectTrackingPixel(t *testing.T) {
	withBody := InjectTrackingPixel("<html><body><p>hi</p></body></html>", "tok-1", "http://track.test/")
	assert.Contains(t, withBody, `<img src="http://track.test/t/tok-1/px.gif"`)
	assert.Contains(t, withBody, `</body>`)
	assert.Less(t, strings.Index(withBody, "px.gif"), strings.Index(withBody, "</body>"),
		"pixel lands inside the body")

	bare := InjectTrackingPixel("<p>hi</p>", "tok-2", "http://track.test")
	assert.Contains(t, bare, "http://track.test/t/tok-2/px.gif")
}

func TestTrackedLinkURLEscapesTarget(t *testing.T) {
	got := TrackedLinkURL("http://track.test", "tok", "https://example.com/page?x=1&y=2")
	assert.Equal(t, "http://track.test/t/tok/l?url=https%3A%2F%2Fexample.com%2Fpage%3Fx%3D1%26y%3D2", got)
}

func TestRecordOpenCountsFirstOpenOnly(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(1, a, b)

	email := seedSentEmail(env, a, b, time.Hour)

	require.NoError(t, env.service.RecordOpen(context.Background(), email.TrackingID))
	assert.Equal(t, 1, a.WarmupOpens)
	assert.Equal(t, enum.WarmupEmailStatusOpened, email.Status)
	require.NotNil(t, email.OpenedAt)
	firstOpen := *email.OpenedAt

	require.NoError(t, env.service.RecordOpen(context.Background(), email.TrackingID))
	assert.Equal(t, 1, a.WarmupOpens, "repeat fetches do not inflate opens")
	assert.Equal(t, firstOpen, *email.OpenedAt)
}

func TestRecordOpenUnknownToken(t *testing.T) {
	env := newTestEnv(1, warmingMailbox("a@warm.test", 5))
	assert.Error(t, env.service.RecordOpen(context.Background(), "no-such-token"))
}

func TestRecordClickImpliesOpen(t *testing.T) {
	a := warmingMailbox("a@warm.test", 5)
	b := warmingMailbox("b@warm.test", 5)
	env := newTestEnv(1, a, b)

	email := seedSentEmail(env, a, b, time.Hour)

	require.NoError(t, env.service.RecordClick(context.Background(), email.TrackingID))
	assert.Equal(t, 1, a.WarmupOpens)
	assert.NotNil(t, email.OpenedAt)
}
