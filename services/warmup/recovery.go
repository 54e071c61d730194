package warmup

import (
	"context"
	"fmt"
	"math"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

type RecoveryResult struct {
	Skipped            bool   `json:"skipped"`
	SkipReason         string `json:"skipReason,omitempty"`
	RecoveringAdvanced int    `json:"recoveringAdvanced"`
	AutoStarted        int    `json:"autoStarted"`
	Completed          int    `json:"completed"`
	Errors             int    `json:"errors"`
}

// RunRecoveryCheck advances every RECOVERING mailbox one ramp step and moves
// eligible PAUSED mailboxes into recovery. Blacklisted mailboxes only enter
// recovery after a fresh clean blacklist verification, never on a timer.
func (s *Service) RunRecoveryCheck(ctx context.Context) (*RecoveryResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunRecoveryCheck")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	cfg := LoadConfig(ctx, s.repositories.Settings)
	if !cfg.AutoRecoveryEnabled {
		s.log.Info("auto-recovery disabled, skipping check")
		return &RecoveryResult{Skipped: true, SkipReason: "auto-recovery disabled"}, nil
	}

	result := &RecoveryResult{}
	now := utils.Now()

	recovering, err := s.repositories.MailboxRepository.GetMailboxesByStatus(ctx, enum.WarmupStatusRecovering)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	for _, mailbox := range recovering {
		completed, err := s.advanceRecovery(ctx, mailbox, cfg)
		if err != nil {
			result.Errors++
			s.log.Errorf("recovery advance failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		result.RecoveringAdvanced++
		if completed {
			result.Completed++
		}
	}

	paused, err := s.repositories.MailboxRepository.GetMailboxesByStatus(ctx, enum.WarmupStatusPaused)
	if err != nil {
		tracing.TraceErr(span, err)
		return result, err
	}
	for _, mailbox := range paused {
		if mailbox.PausedAt == nil {
			continue
		}
		if int(now.Sub(*mailbox.PausedAt).Hours()/24) < cfg.RecoveryWaitDays {
			continue
		}
		if err := s.StartRecovery(ctx, mailbox); err != nil {
			result.Errors++
			s.log.Errorf("recovery start failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		result.AutoStarted++
	}

	span.LogKV("result.advanced", result.RecoveringAdvanced, "result.autoStarted", result.AutoStarted, "result.completed", result.Completed)
	return result, nil
}

// StartRecovery moves a mailbox into RECOVERING with the seed daily limit.
func (s *Service) StartRecovery(ctx context.Context, mailbox *models.Mailbox) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.StartRecovery")
	defer span.Finish()
	tracing.TagMailbox(span, mailbox.ID)

	cfg := s.loadConfigFor(ctx, mailbox)
	now := utils.Now()

	mailbox.RecoveryStartedAt = utils.TimePtr(now)
	mailbox.RecoveryDays = 0
	mailbox.DailySendLimit = cfg.RecoverySeedLimit
	mailbox.EmailsSentToday = 0
	mailbox.PausedAt = nil
	if err := s.transition(ctx, mailbox, enum.WarmupStatusRecovering); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.raiseAlert(ctx, &mailbox.ID, enum.AlertTypeAutoRecovered, enum.AlertSeverityInfo,
		fmt.Sprintf("Recovery started for %s", mailbox.EmailAddress),
		"Auto-recovery initiated. The mailbox will gradually ramp up sending volume.")
	return nil
}

// advanceRecovery applies one daily ramp step: limit multiplied by the ramp
// factor (ceiling rounding) up to the ceiling. Recovery completes once the
// limit reaches the threshold and the minimum day count has passed.
func (s *Service) advanceRecovery(ctx context.Context, mailbox *models.Mailbox, globalCfg *Config) (bool, error) {
	cfg := globalCfg
	if mailbox.WarmupProfileID != nil {
		cfg = s.loadConfigFor(ctx, mailbox)
	}

	newLimit := int(math.Ceil(float64(mailbox.DailySendLimit) * cfg.RecoveryRampFactor))
	if newLimit < cfg.RecoverySeedLimit {
		newLimit = cfg.RecoverySeedLimit
	}
	if newLimit > cfg.RecoveryRampCeiling {
		newLimit = cfg.RecoveryRampCeiling
	}
	mailbox.DailySendLimit = newLimit
	mailbox.RecoveryDays++

	if mailbox.DailySendLimit >= cfg.RecoveryDoneThreshold && mailbox.RecoveryDays >= cfg.RecoveryMinDays {
		return true, s.completeRecovery(ctx, mailbox)
	}

	return false, s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox)
}

// completeRecovery returns the mailbox to WARMING_UP at the start of the ramp.
func (s *Service) completeRecovery(ctx context.Context, mailbox *models.Mailbox) error {
	now := utils.Now()
	mailbox.RecoveryStartedAt = nil
	mailbox.RecoveryDays = 0
	mailbox.WarmupStartedAt = utils.TimePtr(now)
	mailbox.WarmupDaysCompleted = 0
	mailbox.CurrentPhase = 1
	if err := s.transition(ctx, mailbox, enum.WarmupStatusWarmingUp); err != nil {
		return err
	}

	s.raiseAlert(ctx, &mailbox.ID, enum.AlertTypeAutoRecovered, enum.AlertSeverityInfo,
		fmt.Sprintf("Recovery complete for %s", mailbox.EmailAddress),
		"Mailbox has been restored to warming up status.")
	return nil
}

// RecoverFromBlacklist moves a BLACKLISTED mailbox into recovery, but only
// after a fresh blacklist check comes back clean.
func (s *Service) RecoverFromBlacklist(ctx context.Context, mailboxID string, blacklist interfaces.BlacklistService) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RecoverFromBlacklist")
	defer span.Finish()
	tracing.TagMailbox(span, mailboxID)

	mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
	if err != nil {
		return err
	}
	if mailbox.WarmupStatus != enum.WarmupStatusBlacklisted {
		return fmt.Errorf("mailbox %s is not blacklisted", mailboxID)
	}

	check, err := blacklist.RunCheck(ctx, mailboxID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if !check.IsClean {
		return fmt.Errorf("mailbox %s is still listed on %d blacklists", mailboxID, check.TotalListed)
	}

	return s.StartRecovery(ctx, mailbox)
}
