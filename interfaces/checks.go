package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/models"
)

type DNSCheckService interface {
	// RunCheck validates SPF/DKIM/DMARC/MX for the mailbox domain, persists
	// the result and mirrors the score onto the mailbox row.
	RunCheck(ctx context.Context, mailboxID string) (*models.DNSCheckResult, error)
	RunAllChecks(ctx context.Context) (processed, errored int)
}

type BlacklistService interface {
	// RunCheck sweeps the configured DNSBL hosts for the mailbox domain's
	// sending IP, persists the result and applies the blacklist transition.
	RunCheck(ctx context.Context, mailboxID string) (*models.BlacklistCheckResult, error)
	RunAllChecks(ctx context.Context) (processed, errored int)
}
