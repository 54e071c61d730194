package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
)

type ChecksHandler struct {
	dnsCheckService  interfaces.DNSCheckService
	blacklistService interfaces.BlacklistService
}

func NewChecksHandler(s *services.Services) *ChecksHandler {
	return &ChecksHandler{
		dnsCheckService:  s.DNSCheckService,
		blacklistService: s.BlacklistService,
	}
}

// RunDNSCheck validates SPF, DKIM, DMARC and MX for one mailbox domain
func (h *ChecksHandler) RunDNSCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ChecksHandler.RunDNSCheck")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.dnsCheckService.RunCheck(ctx, c.Param("id"))
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

// RunBlacklistCheck sweeps the DNSBL providers for one mailbox domain
func (h *ChecksHandler) RunBlacklistCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ChecksHandler.RunBlacklistCheck")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		result, err := h.blacklistService.RunCheck(ctx, c.Param("id"))
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

// RunAllDNSChecks sweeps every monitored mailbox
func (h *ChecksHandler) RunAllDNSChecks() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ChecksHandler.RunAllDNSChecks")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		processed, errored := h.dnsCheckService.RunAllChecks(ctx)
		c.JSON(http.StatusOK, gin.H{"processed": processed, "errored": errored})
	}
}

// RunAllBlacklistChecks sweeps every monitored mailbox
func (h *ChecksHandler) RunAllBlacklistChecks() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ChecksHandler.RunAllBlacklistChecks")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		processed, errored := h.blacklistService.RunAllChecks(ctx)
		c.JSON(http.StatusOK, gin.H{"processed": processed, "errored": errored})
	}
}
