package warmup

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

type AssessmentDetail struct {
	MailboxID    string  `json:"mailboxId"`
	EmailAddress string  `json:"emailAddress"`
	OldStatus    string  `json:"oldStatus"`
	NewStatus    string  `json:"newStatus"`
	Action       string  `json:"action"`
	HealthScore  float64 `json:"healthScore"`
	DailyLimit   int     `json:"dailyLimit"`
}

type AssessmentSummary struct {
	Assessed      int                `json:"assessed"`
	StatusChanges int                `json:"statusChanges"`
	AutoPaused    int                `json:"autoPaused"`
	Promoted      int                `json:"promoted"`
	Errors        int                `json:"errors"`
	Details       []AssessmentDetail `json:"details"`
}

// RunAssessment recomputes health and applies status transitions for every
// active mailbox with a working connection, or a single mailbox when
// mailboxID is set. One mailbox failing never aborts the batch.
func (s *Service) RunAssessment(ctx context.Context, mailboxID string) (*AssessmentSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.RunAssessment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var mailboxes []*models.Mailbox
	if mailboxID != "" {
		mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		mailboxes = []*models.Mailbox{mailbox}
	} else {
		all, err := s.repositories.MailboxRepository.GetActiveMailboxes(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		mailboxes = all
	}

	summary := &AssessmentSummary{}
	for _, mailbox := range mailboxes {
		if mailbox.ConnectionStatus != enum.ConnectionStatusSuccessful {
			continue
		}
		detail, err := s.assessMailbox(ctx, mailbox)
		if err != nil {
			summary.Errors++
			summary.Details = append(summary.Details, AssessmentDetail{
				MailboxID:    mailbox.ID,
				EmailAddress: mailbox.EmailAddress,
				Action:       fmt.Sprintf("error: %v", err),
			})
			s.log.Errorf("assessment failed for mailbox %s: %v", mailbox.ID, err)
			continue
		}
		summary.Assessed++
		if detail.OldStatus != detail.NewStatus {
			summary.StatusChanges++
		}
		if strings.Contains(detail.Action, "auto_paused") {
			summary.AutoPaused++
		}
		if strings.Contains(detail.Action, "promoted") {
			summary.Promoted++
		}
		summary.Details = append(summary.Details, *detail)
	}

	span.LogKV("result.assessed", summary.Assessed, "result.statusChanges", summary.StatusChanges, "result.errors", summary.Errors)
	return summary, nil
}

func (s *Service) assessMailbox(ctx context.Context, mailbox *models.Mailbox) (*AssessmentDetail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "WarmupService.assessMailbox")
	defer span.Finish()
	tracing.TagMailbox(span, mailbox.ID)

	cfg := s.loadConfigFor(ctx, mailbox)
	now := utils.Now()
	health := CalculateHealthScore(mailbox, cfg, now)

	detail := &AssessmentDetail{
		MailboxID:    mailbox.ID,
		EmailAddress: mailbox.EmailAddress,
		OldStatus:    mailbox.WarmupStatus.String(),
		NewStatus:    mailbox.WarmupStatus.String(),
		Action:       "no_change",
		HealthScore:  health.HealthScore,
		DailyLimit:   mailbox.DailySendLimit,
	}

	// Auto-pause check, only once enough volume exists to trust the rates.
	// Blacklisted mailboxes stay blacklisted until the monitor clears them.
	if health.Scored &&
		mailbox.WarmupStatus != enum.WarmupStatusPaused &&
		mailbox.WarmupStatus != enum.WarmupStatusBlacklisted {
		if health.BounceRate > cfg.AutoPauseBounceRate || health.ComplaintRate > cfg.AutoPauseComplaintRate {
			var reasons []string
			if health.BounceRate > cfg.AutoPauseBounceRate {
				reasons = append(reasons, fmt.Sprintf("bounce_rate=%.1f%%", health.BounceRate))
			}
			if health.ComplaintRate > cfg.AutoPauseComplaintRate {
				reasons = append(reasons, fmt.Sprintf("complaint_rate=%.3f%%", health.ComplaintRate))
			}
			mailbox.PausedAt = utils.TimePtr(now)
			if err := s.transition(ctx, mailbox, enum.WarmupStatusPaused); err != nil {
				return nil, err
			}
			s.raiseAlert(ctx, &mailbox.ID, enum.AlertTypeAutoPaused, enum.AlertSeverityCritical,
				fmt.Sprintf("Mailbox %s auto-paused", mailbox.EmailAddress),
				fmt.Sprintf("Warmup paused automatically: %s", strings.Join(reasons, ", ")))
			detail.NewStatus = enum.WarmupStatusPaused.String()
			detail.Action = "auto_paused (" + strings.Join(reasons, ", ") + ")"
			return detail, nil
		}
	}

	switch mailbox.WarmupStatus {
	case enum.WarmupStatusInactive:
		if mailbox.IsActive && mailbox.ConnectionStatus == enum.ConnectionStatusSuccessful {
			mailbox.WarmupStartedAt = utils.TimePtr(now)
			mailbox.WarmupDaysCompleted = 0
			mailbox.CurrentPhase = 1
			mailbox.DailySendLimit = DailyLimitForDay(1, cfg)
			if err := s.transition(ctx, mailbox, enum.WarmupStatusWarmingUp); err != nil {
				return nil, err
			}
			detail.NewStatus = enum.WarmupStatusWarmingUp.String()
			detail.Action = "started_warmup"
			detail.DailyLimit = mailbox.DailySendLimit
		}

	case enum.WarmupStatusWarmingUp:
		day := mailbox.WarmupDaysCompleted + 1
		if day > cfg.TotalDays {
			// Graduation: promote straight to ACTIVE when the health bar is met,
			// otherwise the mailbox parks in COLD_READY.
			mailbox.WarmupCompletedAt = utils.TimePtr(now)
			target := enum.WarmupStatusColdReady
			action := "warmup_completed"
			if health.Scored && health.HealthScore >= float64(cfg.ActiveHealthThreshold) {
				target = enum.WarmupStatusActive
				action = "promoted_to_active"
			}
			if err := s.transition(ctx, mailbox, target); err != nil {
				return nil, err
			}
			if target == enum.WarmupStatusActive {
				s.raiseAlert(ctx, &mailbox.ID, enum.AlertTypeWarmupComplete, enum.AlertSeverityInfo,
					fmt.Sprintf("Mailbox %s is fully warmed up", mailbox.EmailAddress),
					"Warmup completed and promoted to active.")
			}
			detail.NewStatus = target.String()
			detail.Action = action
		} else {
			phase, phaseName := PhaseForDay(day, cfg)
			mailbox.DailySendLimit = DailyLimitForDay(day, cfg)
			mailbox.WarmupDaysCompleted = day
			mailbox.CurrentPhase = phase
			if err := s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
				return nil, err
			}
			detail.DailyLimit = mailbox.DailySendLimit
			detail.Action = fmt.Sprintf("day_%d_phase_%d_%s", day, phase, phaseName)
		}

	case enum.WarmupStatusColdReady:
		daysSinceReady := 0
		if mailbox.WarmupCompletedAt != nil {
			daysSinceReady = int(now.Sub(*mailbox.WarmupCompletedAt).Hours() / 24)
		}
		if daysSinceReady >= cfg.ActiveMinDays &&
			health.Scored &&
			health.HealthScore >= float64(cfg.ActiveHealthThreshold) {
			if err := s.transition(ctx, mailbox, enum.WarmupStatusActive); err != nil {
				return nil, err
			}
			detail.NewStatus = enum.WarmupStatusActive.String()
			detail.Action = "promoted_to_active"
		}
	}

	return detail, nil
}

// HealthForMailbox exposes the score breakdown for the health endpoint.
func (s *Service) HealthForMailbox(ctx context.Context, mailboxID string) (*HealthBreakdown, error) {
	mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
	if err != nil {
		return nil, err
	}
	cfg := s.loadConfigFor(ctx, mailbox)
	health := CalculateHealthScore(mailbox, cfg, utils.Now())
	return &health, nil
}

// ScheduleForMailbox builds the ramp preview using the mailbox's profile.
func (s *Service) ScheduleForMailbox(ctx context.Context, mailboxID string) (*Schedule, error) {
	mailbox, err := s.repositories.MailboxRepository.GetMailbox(ctx, mailboxID)
	if err != nil {
		return nil, err
	}
	return BuildSchedule(s.loadConfigFor(ctx, mailbox)), nil
}
