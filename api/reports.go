package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thrivenig/travelbook/internal/report"
)

type ReportHandler struct {
	service *report.Service
}

func NewReportHandler(service *report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.export)
}

// export serves the assembled report. The export query parameter picks the
// format: csv, excel or pdf; anything else renders the HTML page.
func (h *ReportHandler) export(c *gin.Context) {
	data, err := h.service.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	switch c.Query("export") {
	case "csv":
		if err := report.WriteCSV(&buf, data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="booking_report.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	case "excel":
		if err := report.WriteExcel(&buf, data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="booking_report.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	case "pdf":
		contentType, err := h.service.RenderPDF(&buf, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if contentType == "application/pdf" {
			c.Header("Content-Disposition", `attachment; filename="booking_report.pdf"`)
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	default:
		if err := report.RenderHTML(&buf, data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
