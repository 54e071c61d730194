package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

const (
	dialTimeout = 10 * time.Second
	// Implicit-TLS submission port; everything else negotiates STARTTLS.
	implicitTLSPort = 465
)

type emailSender struct {
	log logger.Logger
}

func NewEmailSender(log logger.Logger) interfaces.EmailSender {
	return &emailSender{log: log}
}

func (s *emailSender) Send(ctx context.Context, mailbox *models.Mailbox, to, subject, bodyHTML, bodyText string) (*interfaces.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailSender.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMailbox(span, mailbox.ID)
	span.LogKV("to", to)

	if err := validateSendInput(mailbox, to, subject, bodyHTML, bodyText); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	messageID := utils.GenerateMessageID(mailbox.Domain(), "")
	buffer, err := buildMessage(mailbox, to, subject, messageID, bodyHTML, bodyText)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err := s.deliver(ctx, mailbox, []string{to}, buffer); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &interfaces.SendResult{MessageID: messageID}, nil
}

// TestConnection dials and authenticates against the mailbox's SMTP server and
// records the outcome on the mailbox struct. Persisting the updated row is the
// caller's job.
func (s *emailSender) TestConnection(ctx context.Context, mailbox *models.Mailbox) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailSender.TestConnection")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMailbox(span, mailbox.ID)

	mailbox.LastConnectionTestAt = utils.NowPtr()

	client, err := s.connect(ctx, mailbox)
	if err == nil {
		err = client.Quit()
	}
	if err != nil {
		tracing.TraceErr(span, err)
		mailbox.ConnectionStatus = enum.ConnectionStatusFailed
		mailbox.ConnectionError = err.Error()
		return err
	}

	mailbox.ConnectionStatus = enum.ConnectionStatusSuccessful
	mailbox.ConnectionError = ""
	return nil
}

func (s *emailSender) deliver(ctx context.Context, mailbox *models.Mailbox, recipients []string, buffer *bytes.Buffer) error {
	client, err := s.connect(ctx, mailbox)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(mailbox.EmailAddress); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}
	if _, err := dataWriter.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := dataWriter.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// connect returns an authenticated SMTP client on the mailbox's configured
// transport: implicit TLS on 465, STARTTLS when smtp_tls is set, otherwise
// plaintext.
func (s *emailSender) connect(ctx context.Context, mailbox *models.Mailbox) (*smtp.Client, error) {
	if mailbox.SmtpServer == "" {
		return nil, errors.New("mailbox has no SMTP server configured")
	}

	addr := fmt.Sprintf("%s:%d", mailbox.SmtpServer, mailbox.SmtpPort)
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if mailbox.SmtpPort == implicitTLSPort {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: mailbox.SmtpServer})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, mailbox.SmtpServer)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if mailbox.SmtpTLS && mailbox.SmtpPort != implicitTLSPort {
		if err := client.StartTLS(&tls.Config{ServerName: mailbox.SmtpServer}); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	auth := smtp.PlainAuth("", mailbox.SmtpUsername, mailbox.SmtpPassword, mailbox.SmtpServer)
	if err := client.Auth(auth); err != nil {
		client.Close()
		return nil, fmt.Errorf("SMTP authentication failed: %w", err)
	}

	return client, nil
}

func validateSendInput(mailbox *models.Mailbox, to, subject, bodyHTML, bodyText string) error {
	if mailbox == nil {
		return errors.New("mailbox cannot be nil")
	}
	if to == "" {
		return errors.New("at least one recipient is required")
	}
	if subject == "" {
		return errors.New("email must have a subject")
	}
	if bodyHTML == "" && bodyText == "" {
		return errors.New("email must have either text or HTML content")
	}
	return nil
}

// buildMessage renders the full RFC 5322 message: headers plus a
// multipart/alternative body carrying the text and HTML variants.
func buildMessage(mailbox *models.Mailbox, to, subject, messageID string, bodyHTML, bodyText string) (*bytes.Buffer, error) {
	buffer := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(buffer)

	from := mailbox.EmailAddress
	if mailbox.DisplayName != "" {
		from = fmt.Sprintf("%s <%s>", mailbox.DisplayName, mailbox.EmailAddress)
	}

	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"Message-ID":   messageID,
		"Date":         utils.Now().Format(time.RFC1123Z),
		"MIME-Version": "1.0",
		"Content-Type": fmt.Sprintf(`multipart/alternative; boundary=%q`, writer.Boundary()),
	}
	for _, key := range []string{"From", "To", "Subject", "Message-ID", "Date", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(buffer, "%s: %s\r\n", key, headers[key])
	}
	buffer.WriteString("\r\n")

	if bodyText != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create text part: %w", err)
		}
		if _, err := part.Write([]byte(bodyText)); err != nil {
			return nil, fmt.Errorf("failed to write text content: %w", err)
		}
	}

	if bodyHTML != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create HTML part: %w", err)
		}
		if _, err := part.Write([]byte(bodyHTML)); err != nil {
			return nil, fmt.Errorf("failed to write HTML content: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buffer, nil
}
