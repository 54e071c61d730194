package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
	"github.com/coldreach/warmstack/services/warmup"
)

const defaultEmailListLimit = 100

type WarmupHandler struct {
	warmupService    *warmup.Service
	blacklistService interfaces.BlacklistService
	emailRepository  interfaces.WarmupEmailRepository
}

func NewWarmupHandler(s *services.Services, repos *repository.Repositories) *WarmupHandler {
	return &WarmupHandler{
		warmupService:    s.WarmupService,
		blacklistService: s.BlacklistService,
		emailRepository:  repos.WarmupEmailRepository,
	}
}

// RunAssessment triggers the daily assessment on demand. With ?mailboxId= it
// assesses a single mailbox, useful to start warmup right after onboarding.
func (h *WarmupHandler) RunAssessment() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.RunAssessment")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		summary, err := h.warmupService.RunAssessment(ctx, c.Query("mailboxId"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// RunPeerCycle triggers one peer send cycle on demand
func (h *WarmupHandler) RunPeerCycle() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.RunPeerCycle")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.warmupService.RunPeerCycle(ctx, c.Query("mailboxId"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// RunAutoReplyCycle triggers one auto-reply pass on demand
func (h *WarmupHandler) RunAutoReplyCycle() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.RunAutoReplyCycle")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.warmupService.RunAutoReplyCycle(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// RunRecoveryCheck triggers the paused-mailbox recovery sweep on demand
func (h *WarmupHandler) RunRecoveryCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.RunRecoveryCheck")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.warmupService.RunRecoveryCheck(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// Health returns the weighted reputation breakdown for a mailbox
func (h *WarmupHandler) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.Health")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		breakdown, err := h.warmupService.HealthForMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, breakdown)
	}
}

// Schedule returns the full phase-by-phase ramp plan for a mailbox
func (h *WarmupHandler) Schedule() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.Schedule")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		schedule, err := h.warmupService.ScheduleForMailbox(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, schedule)
	}
}

// Eligibility reports whether the outreach pipeline may send from the mailbox
func (h *WarmupHandler) Eligibility() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.Eligibility")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		eligibility, err := h.warmupService.CheckSendEligibility(ctx, c.Param("id"))
		if err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, eligibility)
	}
}

// ListEmails returns the peer warmup send history, newest first
func (h *WarmupHandler) ListEmails() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.ListEmails")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		filter := interfaces.WarmupEmailFilter{
			SenderMailboxID:   c.Query("senderMailboxId"),
			ReceiverMailboxID: c.Query("receiverMailboxId"),
			Limit:             defaultEmailListLimit,
		}
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			filter.Limit = parsed
		}
		if raw := c.Query("offset"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "offset must not be negative"})
				return
			}
			filter.Offset = parsed
		}

		emails, err := h.emailRepository.List(ctx, filter)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"emails": emails, "total": len(emails)})
	}
}

// RecoverFromBlacklist moves a blacklisted mailbox into recovery after a
// fresh clean blacklist check
func (h *WarmupHandler) RecoverFromBlacklist() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "WarmupHandler.RecoverFromBlacklist")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		id := c.Param("id")
		if err := h.warmupService.RecoverFromBlacklist(ctx, id, h.blacklistService); err != nil {
			if stderrors.Is(err, errors.ErrMailboxNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "recovery started", "id": id})
	}
}
