package dnscheck

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

const (
	scoreSPF   = 35
	scoreDKIM  = 35
	scoreDMARC = 30
)

type dnsCheckService struct {
	log          logger.Logger
	repositories *repository.Repositories
	resolver     dnsclient.Resolver
	publisher    interfaces.EventPublisher
}

func NewDNSCheckService(
	log logger.Logger,
	repositories *repository.Repositories,
	resolver dnsclient.Resolver,
	publisher interfaces.EventPublisher,
) interfaces.DNSCheckService {
	return &dnsCheckService{
		log:          log,
		repositories: repositories,
		resolver:     resolver,
		publisher:    publisher,
	}
}

func (s *dnsCheckService) RunCheck(ctx context.Context, mailboxID string) (*models.DNSCheckResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSCheckService.RunCheck")
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

	selectors := s.dkimSelectors(ctx)

	result := &models.DNSCheckResult{
		MailboxID: mailboxID,
		Domain:    domain,
		CheckedAt: utils.Now(),
	}

	result.SPFValid, result.SPFRecord = s.checkSPF(ctx, domain)
	result.DKIMValid, result.DKIMSelector = s.checkDKIM(ctx, domain, selectors)
	result.DMARCValid, result.DMARCRecord, result.DMARCPolicy = s.checkDMARC(ctx, domain)
	result.MXHosts = s.checkMX(ctx, domain)
	result.OverallScore = calculateScore(result.SPFValid, result.DKIMValid, result.DMARCValid)

	if err := s.repositories.DNSCheckRepository.Create(ctx, result); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	mailbox.DNSScore = result.OverallScore
	mailbox.LastDNSCheckAt = utils.NowPtr()
	if err := s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.maybeRaiseAlert(ctx, mailbox, result)

	span.LogKV("result.score", result.OverallScore)
	return result, nil
}

// RunAllChecks sweeps every mailbox that is actively sending or about to.
func (s *dnsCheckService) RunAllChecks(ctx context.Context) (int, int) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DNSCheckService.RunAllChecks")
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
			s.log.Errorf("dns check failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		processed++
	}
	span.LogKV("processed", processed, "errored", errored)
	return processed, errored
}

func (s *dnsCheckService) checkSPF(ctx context.Context, domain string) (bool, string) {
	records, err := s.resolver.LookupTXT(ctx, domain)
	if err != nil {
		s.log.Warnf("SPF lookup failed for %s: %v", domain, err)
		return false, ""
	}
	for _, txt := range records {
		if strings.HasPrefix(txt, "v=spf1") {
			return true, txt
		}
	}
	return false, ""
}

// checkDKIM probes the configured selectors in order and reports the first hit.
func (s *dnsCheckService) checkDKIM(ctx context.Context, domain string, selectors []string) (bool, string) {
	for _, selector := range selectors {
		records, err := s.resolver.LookupTXT(ctx, fmt.Sprintf("%s._domainkey.%s", selector, domain))
		if err != nil {
			s.log.Warnf("DKIM lookup failed for %s selector %s: %v", domain, selector, err)
			continue
		}
		for _, txt := range records {
			if strings.Contains(txt, "v=DKIM1") || strings.Contains(txt, "p=") {
				return true, selector
			}
		}
	}
	return false, ""
}

func (s *dnsCheckService) checkDMARC(ctx context.Context, domain string) (bool, string, string) {
	records, err := s.resolver.LookupTXT(ctx, "_dmarc."+domain)
	if err != nil {
		s.log.Warnf("DMARC lookup failed for %s: %v", domain, err)
		return false, "", ""
	}
	for _, txt := range records {
		if !strings.HasPrefix(txt, "v=DMARC1") {
			continue
		}
		policy := "none"
		if strings.Contains(txt, "p=reject") {
			policy = "reject"
		} else if strings.Contains(txt, "p=quarantine") {
			policy = "quarantine"
		}
		return true, txt, policy
	}
	return false, "", ""
}

func (s *dnsCheckService) checkMX(ctx context.Context, domain string) []string {
	records, err := s.resolver.LookupMX(ctx, domain)
	if err != nil {
		s.log.Warnf("MX lookup failed for %s: %v", domain, err)
		return nil
	}
	hosts := make([]string, 0, len(records))
	for _, mx := range records {
		hosts = append(hosts, mx.Host)
	}
	return hosts
}

func (s *dnsCheckService) dkimSelectors(ctx context.Context) []string {
	raw := s.repositories.Settings.GetString(ctx, "warmup_dkim_selectors", "")
	if strings.TrimSpace(raw) == "" {
		return []string{"selector1", "selector2", "google", "default"}
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// maybeRaiseAlert files a warning when authentication records are missing.
func (s *dnsCheckService) maybeRaiseAlert(ctx context.Context, mailbox *models.Mailbox, result *models.DNSCheckResult) {
	threshold := s.repositories.Settings.GetInt(ctx, "warmup_dns_alert_threshold", 70)
	if result.OverallScore >= threshold {
		return
	}

	var missing []string
	if !result.SPFValid {
		missing = append(missing, "SPF")
	}
	if !result.DKIMValid {
		missing = append(missing, "DKIM")
	}
	if !result.DMARCValid {
		missing = append(missing, "DMARC")
	}

	alert := &models.WarmupAlert{
		MailboxID: &mailbox.ID,
		AlertType: enum.AlertTypeDNSIssue,
		Severity:  enum.AlertSeverityWarning,
		Title:     fmt.Sprintf("DNS issues for %s", result.Domain),
		Message:   fmt.Sprintf("DNS health score %d/100, missing: %s", result.OverallScore, strings.Join(missing, ", ")),
	}
	if err := s.repositories.WarmupAlertRepository.Create(ctx, alert); err != nil {
		s.log.Errorf("failed to persist DNS alert for %s: %v", mailbox.ID, err)
		return
	}
	s.publisher.PublishAlert(ctx, alert)
}

func calculateScore(spfValid, dkimValid, dmarcValid bool) int {
	score := 0
	if spfValid {
		score += scoreSPF
	}
	if dkimValid {
		score += scoreDKIM
	}
	if dmarcValid {
		score += scoreDMARC
	}
	return score
}
