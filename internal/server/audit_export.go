package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
)

const maxAuditExportRange = 90 * 24 * time.Hour

// @Summary      Export Audit Log
// @Description  Download audit entries as CSV or JSON with a SHA-256 checksum header
// @Tags         audit
// @Produce      text/csv
// @Produce      json
// @Param        start_date  query  string  true   "Start (YYYY-MM-DD)"
// @Param        end_date    query  string  true   "End (YYYY-MM-DD), inclusive"
// @Param        format      query  string  false  "csv or json"
// @Param        actions     query  string  false  "Comma separated actions"
// @Success      200  {file}  binary
// @Router       /audit/export [get]
func (s *Server) ExportAuditLogs(c *gin.Context) {
	if err := actorFrom(c).Require(authzdomain.PermAuditExport); err != nil {
		AbortWithError(c, err)
		return
	}

	startDateStr := strings.TrimSpace(c.Query("start_date"))
	endDateStr := strings.TrimSpace(c.Query("end_date"))
	formatStr := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	actionsStr := strings.TrimSpace(c.Query("actions"))

	if startDateStr == "" || endDateStr == "" {
		AbortWithError(c, newValidationError("start_date", "missing_date_range", "start_date and end_date are required"))
		return
	}

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_date", "invalid start_date"))
		return
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_date", "invalid end_date"))
		return
	}

	// end_date is inclusive
	endDate = endDate.Add(24 * time.Hour)

	if !endDate.After(startDate) {
		AbortWithError(c, newValidationError("end_date", "invalid_date_range", "end_date is before start_date"))
		return
	}
	if endDate.Sub(startDate) > maxAuditExportRange {
		AbortWithError(c, newValidationError("end_date", "date_range_too_long", "export is limited to 90 days"))
		return
	}

	var format auditdomain.ExportFormat
	switch formatStr {
	case "csv":
		format = auditdomain.ExportFormatCSV
	case "json":
		format = auditdomain.ExportFormatJSON
	default:
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be csv or json"))
		return
	}

	var actions []string
	if actionsStr != "" {
		for _, a := range strings.Split(actionsStr, ",") {
			if a = strings.TrimSpace(a); a != "" {
				actions = append(actions, a)
			}
		}
	}

	result, err := s.auditExportSvc.Export(c.Request.Context(), auditdomain.ExportRequest{
		StartDate: startDate,
		EndDate:   endDate,
		Format:    format,
		Actions:   actions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("X-Audit-Export-Checksum", result.Checksum)
	c.Header("X-Audit-Export-Count", strconv.Itoa(result.Count))

	contentType := "text/csv"
	if result.Format == auditdomain.ExportFormatJSON {
		contentType = "application/json"
	}
	filename := "audit_export_" + startDateStr + "_" + endDateStr + "." + string(result.Format)

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, contentType, result.Data)
}
