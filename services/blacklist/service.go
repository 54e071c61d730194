package blacklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/dnsclient"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

var defaultProviders = []string{
	"zen.spamhaus.org",
	"bl.spamcop.net",
	"b.barracudacentral.org",
	"dnsbl.sorbs.net",
	"cbl.abuseat.org",
	"dnsbl-1.uceprotect.net",
}

type blacklistService struct {
	log          logger.Logger
	repositories *repository.Repositories
	resolver     dnsclient.Resolver
	publisher    interfaces.EventPublisher
}

func NewBlacklistService(
	log logger.Logger,
	repositories *repository.Repositories,
	resolver dnsclient.Resolver,
	publisher interfaces.EventPublisher,
) interfaces.BlacklistService {
	return &blacklistService{
		log:          log,
		repositories: repositories,
		resolver:     resolver,
		publisher:    publisher,
	}
}

func (s *blacklistService) RunCheck(ctx context.Context, mailboxID string) (*models.BlacklistCheckResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BlacklistService.RunCheck")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMailbox(span, mailboxID)

	mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	domain := mailbox.Domain()
	if domain == "" {
		return nil, errors.Errorf("mailbox %s has no usable domain", mailboxID)
	}
	span.SetTag("domain", domain)

	providers := s.providers(ctx)
	ip := s.resolveSendingIP(ctx, domain)

	result := &models.BlacklistCheckResult{
		MailboxID:    mailboxID,
		Domain:       domain,
		IPAddress:    ip,
		TotalChecked: len(providers),
		CheckedAt:    utils.Now(),
	}

	if ip != "" {
		for _, provider := range providers {
			listed, err := s.isListed(ctx, ip, provider)
			if err != nil {
				s.log.Warnf("DNSBL query against %s failed for %s: %v", provider, ip, err)
				continue
			}
			if listed {
				result.ListedOn = append(result.ListedOn, provider)
			}
		}
	}
	result.TotalListed = len(result.ListedOn)
	result.IsClean = result.TotalListed == 0

	if err := s.repositories.BlacklistCheckRepository.Create(ctx, result); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	mailbox.IsBlacklisted = !result.IsClean
	mailbox.LastBlacklistCheckAt = utils.NowPtr()
	if err := s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if !result.IsClean {
		s.applyBlacklistTransition(ctx, mailbox, result)
	}

	span.LogKV("result.listed", result.TotalListed, "result.clean", result.IsClean)
	return result, nil
}

func (s *blacklistService) RunAllChecks(ctx context.Context) (int, int) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BlacklistService.RunAllChecks")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	mailboxes, err := s.repositories.MailboxRepository.GetMailboxesByStatus(ctx,
		enum.WarmupStatusWarmingUp,
		enum.WarmupStatusRecovering,
		enum.WarmupStatusColdReady,
		enum.WarmupStatusActive,
	)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, 1
	}

	processed, errored := 0, 0
	for _, mailbox := range mailboxes {
		if _, err := s.RunCheck(ctx, mailbox.ID); err != nil {
			errored++
			s.log.Errorf("blacklist check failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		processed++
	}
	span.LogKV("processed", processed, "errored", errored)
	return processed, errored
}

func (s *blacklistService) resolveSendingIP(ctx context.Context, domain string) string {
	addrs, err := s.resolver.LookupA(ctx, domain)
	if err != nil {
		s.log.Warnf("A record lookup failed for %s: %v", domain, err)
		return ""
	}
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

// isListed queries one DNSBL. Listing is signalled by any A answer for the
// reversed-octet name; NXDOMAIN means the IP is clean on that list.
func (s *blacklistService) isListed(ctx context.Context, ip, provider string) (bool, error) {
	addrs, err := s.resolver.LookupA(ctx, fmt.Sprintf("%s.%s", reverseOctets(ip), provider))
	if err != nil {
		return false, err
	}
	return len(addrs) > 0, nil
}

func (s *blacklistService) providers(ctx context.Context) []string {
	raw := s.repositories.Settings.GetString(ctx, "warmup_blacklist_providers", "")
	if strings.TrimSpace(raw) == "" {
		return defaultProviders
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultProviders
	}
	return out
}

// applyBlacklistTransition parks a listed mailbox in BLACKLISTED and files a
// critical alert. Paused mailboxes keep their status so the operator's pause
// reason is not overwritten.
func (s *blacklistService) applyBlacklistTransition(ctx context.Context, mailbox *models.Mailbox, result *models.BlacklistCheckResult) {
	if !s.repositories.Settings.GetBool(ctx, "warmup_auto_pause_on_blacklist", true) {
		return
	}
	if mailbox.WarmupStatus == enum.WarmupStatusPaused || mailbox.WarmupStatus == enum.WarmupStatusBlacklisted {
		return
	}

	from := mailbox.WarmupStatus
	mailbox.WarmupStatus = enum.WarmupStatusBlacklisted
	if err := s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
		s.log.Errorf("failed to blacklist mailbox %s: %v", mailbox.ID, err)
		return
	}
	s.publisher.PublishStatusChange(ctx, mailbox.ID, from, enum.WarmupStatusBlacklisted)

	alert := &models.WarmupAlert{
		MailboxID: &mailbox.ID,
		AlertType: enum.AlertTypeBlacklistDetected,
		Severity:  enum.AlertSeverityCritical,
		Title:     fmt.Sprintf("Mailbox %s is blacklisted", mailbox.EmailAddress),
		Message:   fmt.Sprintf("IP %s listed on: %s", result.IPAddress, strings.Join(result.ListedOn, ", ")),
	}
	if err := s.repositories.WarmupAlertRepository.Create(ctx, alert); err != nil {
		s.log.Errorf("failed to persist blacklist alert for %s: %v", mailbox.ID, err)
		return
	}
	s.publisher.PublishAlert(ctx, alert)
}

// reverseOctets turns 192.0.2.44 into 44.2.0.192 for DNSBL lookups.
func reverseOctets(ip string) string {
	octets := strings.Split(ip, ".")
	for i, j := 0, len(octets)-1; i < j; i, j = i+1, j-1 {
		octets[i], octets[j] = octets[j], octets[i]
	}
	return strings.Join(octets, ".")
}
