package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
	"github.com/coldreach/warmstack/services/reports"
)

type ReportsHandler struct {
	exporter *reports.Exporter
}

func NewReportsHandler(s *services.Services) *ReportsHandler {
	return &ReportsHandler{
		exporter: s.ReportExporter,
	}
}

// Export builds the warmup activity report. ?format=csv downloads a CSV
// file, anything else returns JSON. ?days= bounds the window and
// ?mailboxId= may repeat to narrow the report to specific mailboxes.
func (h *ReportsHandler) Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ReportsHandler.Export")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		days := 0
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
				return
			}
			days = parsed
		}

		mailboxIDs := c.QueryArray("mailboxId")

		if strings.EqualFold(c.Query("format"), "csv") {
			payload, err := h.exporter.ExportCSV(ctx, mailboxIDs, days)
			if err != nil {
				tracing.TraceErr(span, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.Header("Content-Disposition", `attachment; filename="warmup_report.csv"`)
			c.Data(http.StatusOK, "text/csv", payload)
			return
		}

		report, err := h.exporter.BuildReport(ctx, mailboxIDs, days)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
