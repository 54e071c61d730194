package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
	"github.com/coldreach/warmstack/services/warmup"
)

// transparent 1x1 GIF
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TrackingHandler struct {
	warmupService *warmup.Service
}

func NewTrackingHandler(s *services.Services) *TrackingHandler {
	return &TrackingHandler{
		warmupService: s.WarmupService,
	}
}

// Pixel serves the open-tracking pixel. The pixel is always returned, even
// for unknown tokens, so a broken link never renders in the recipient inbox.
func (h *TrackingHandler) Pixel() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TrackingHandler.Pixel")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		if err := h.warmupService.RecordOpen(ctx, c.Param("id")); err != nil {
			tracing.TraceErr(span, err)
		}

		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Data(http.StatusOK, "image/gif", trackingPixel)
	}
}

// Link records a click-through and redirects to the original target
func (h *TrackingHandler) Link() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TrackingHandler.Link")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		target := c.Query("url")
		parsed, err := url.Parse(target)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http or https link"})
			return
		}

		if err := h.warmupService.RecordClick(ctx, c.Param("id")); err != nil {
			tracing.TraceErr(span, err)
		}

		c.Redirect(http.StatusFound, target)
	}
}
