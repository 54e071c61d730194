package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/internal/models"
)

func testMailbox() *models.Mailbox {
	return &models.Mailbox{
		ID:           "mbox_1",
		EmailAddress: "alice@warm.test",
		DisplayName:  "Alice Warm",
		SmtpServer:   "smtp.warm.test",
		SmtpPort:     587,
		SmtpUsername: "alice@warm.test",
		SmtpPassword: "secret",
		SmtpTLS:      true,
	}
}

func TestValidateSendInput(t *testing.T) {
	mb := testMailbox()

	assert.Error(t, validateSendInput(nil, "b@x.test", "s", "h", "t"))
	assert.Error(t, validateSendInput(mb, "", "s", "h", "t"))
	assert.Error(t, validateSendInput(mb, "b@x.test", "", "h", "t"))
	assert.Error(t, validateSendInput(mb, "b@x.test", "s", "", ""))
	assert.NoError(t, validateSendInput(mb, "b@x.test", "s", "", "text only"))
	assert.NoError(t, validateSendInput(mb, "b@x.test", "s", "<p>html only</p>", ""))
}

func TestBuildMessageHeadersAndParts(t *testing.T) {
	mb := testMailbox()

	buffer, err := buildMessage(mb, "bob@peer.test", "Quick question", "<msg-1@warm.test>", "<p>Hi Bob</p>", "Hi Bob")
	require.NoError(t, err)
	msg := buffer.String()

	assert.Contains(t, msg, "From: Alice Warm <alice@warm.test>\r\n")
	assert.Contains(t, msg, "To: bob@peer.test\r\n")
	assert.Contains(t, msg, "Subject: Quick question\r\n")
	assert.Contains(t, msg, "Message-ID: <msg-1@warm.test>\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, msg, "<p>Hi Bob</p>")
	assert.Contains(t, msg, "Hi Bob")

	// Text alternative comes before the HTML one
	assert.Less(t, strings.Index(msg, "text/plain"), strings.Index(msg, "text/html"))
}

func TestBuildMessageWithoutDisplayName(t *testing.T) {
	mb := testMailbox()
	mb.DisplayName = ""

	buffer, err := buildMessage(mb, "bob@peer.test", "Hello", "<msg-2@warm.test>", "", "plain body")
	require.NoError(t, err)
	msg := buffer.String()

	assert.Contains(t, msg, "From: alice@warm.test\r\n")
	assert.NotContains(t, msg, "text/html")
}
