package server

import (
	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	reportdomain "github.com/railzwaylabs/waterworks/internal/report/domain"
	reportservice "github.com/railzwaylabs/waterworks/internal/report/service"
	"go.uber.org/zap"
)

// @Summary      Dashboard
// @Description  Active customers, pending invoices, pending amount and sector count
// @Tags         reports
// @Produce      json
// @Success      200  {object}  DataResponse
// @Router       /dashboard [get]
func (s *Server) Dashboard(c *gin.Context) {
	resp, err := s.reportSvc.Dashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Income Report
// @Description  Payments per day, newest first. Defaults to the current month.
// @Tags         reports
// @Produce      json
// @Produce      application/pdf
// @Param        from    query  string  false  "From (YYYY-MM-DD)"
// @Param        to      query  string  false  "To (YYYY-MM-DD), inclusive"
// @Param        format  query  string  false  "json or pdf"
// @Success      200  {object}  DataResponse
// @Router       /reports/income [get]
func (s *Server) IncomeReport(c *gin.Context) {
	var query reportdomain.PeriodRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reportSvc.Income(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if wantsPDF(c) {
		s.respondTable(c, reportservice.IncomeTable(resp, s.cfg.Committee.CurrencySymbol))
		return
	}
	respondData(c, resp)
}

// @Summary      Debtors Report
// @Description  Customers with pending readings, largest debt first
// @Tags         reports
// @Produce      json
// @Produce      application/pdf
// @Param        format  query  string  false  "json or pdf"
// @Success      200  {object}  DataResponse
// @Router       /reports/debtors [get]
func (s *Server) DebtorsReport(c *gin.Context) {
	resp, err := s.reportSvc.Debtors(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if wantsPDF(c) {
		s.respondTable(c, reportservice.DebtorsTable(resp, s.cfg.Committee.CurrencySymbol))
		return
	}
	respondData(c, resp)
}

// @Summary      Consumption Report
// @Description  Average, maximum and minimum consumption per customer over a period
// @Tags         reports
// @Produce      json
// @Produce      application/pdf
// @Param        from    query  string  false  "From (YYYY-MM-DD)"
// @Param        to      query  string  false  "To (YYYY-MM-DD), inclusive"
// @Param        format  query  string  false  "json or pdf"
// @Success      200  {object}  DataResponse
// @Router       /reports/consumption [get]
func (s *Server) ConsumptionReport(c *gin.Context) {
	var query reportdomain.PeriodRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reportSvc.Consumption(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if wantsPDF(c) {
		s.respondTable(c, reportservice.ConsumptionTable(resp))
		return
	}
	respondData(c, resp)
}

// @Summary      Customer Report
// @Description  Reading and payment history, statistics and pending invoices of one customer
// @Tags         reports
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  DataResponse
// @Router       /reports/customers/{id} [get]
func (s *Server) CustomerReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.reportSvc.Customer(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) respondTable(c *gin.Context, table pdf.Table) {
	body, err := s.renderer.RenderTable(table)
	if err != nil {
		s.log.Error("render report", zap.String("title", table.Title), zap.Error(err))
		AbortWithError(c, err)
		return
	}
	respondPDF(c, pdf.ReportFilename(table.Title, table.GeneratedAt), body)
}
