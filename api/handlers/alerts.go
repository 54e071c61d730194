package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
)

const defaultAlertListLimit = 50

type AlertsHandler struct {
	alertRepository interfaces.WarmupAlertRepository
}

func NewAlertsHandler(repos *repository.Repositories) *AlertsHandler {
	return &AlertsHandler{
		alertRepository: repos.WarmupAlertRepository,
	}
}

// List returns recent alerts, newest first. ?unread=true narrows to unread
// alerts, ?limit= caps the page size.
func (h *AlertsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AlertsHandler.List")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		unreadOnly := c.Query("unread") == "true"
		limit := defaultAlertListLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		alerts, err := h.alertRepository.List(ctx, unreadOnly, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		unreadCount, err := h.alertRepository.CountUnread(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"alerts":      alerts,
			"total":       len(alerts),
			"unreadCount": unreadCount,
		})
	}
}

// MarkRead marks a single alert as read
func (h *AlertsHandler) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AlertsHandler.MarkRead")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		id := c.Param("id")
		if err := h.alertRepository.MarkRead(ctx, id); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "alert marked read", "id": id})
	}
}

// MarkAllRead marks every unread alert as read
func (h *AlertsHandler) MarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AlertsHandler.MarkAllRead")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		updated, err := h.alertRepository.MarkAllRead(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "alerts marked read", "updated": updated})
	}
}
