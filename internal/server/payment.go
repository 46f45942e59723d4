package server

import (
	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	"go.uber.org/zap"
)

// @Summary      Record Payment
// @Description  Settle a pending reading for exactly its billed amount
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Reading ID"
// @Success      201  {object}  DataResponse
// @Failure      409  {object}  map[string]any
// @Router       /readings/{id}/payment [post]
func (s *Server) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

// @Summary      Print Receipt
// @Description  PDF receipt for the latest payment of a reading, in customer and committee copies
// @Tags         payments
// @Produce      application/pdf
// @Param        id   path      string  true  "Reading ID"
// @Success      200  {file}  binary
// @Router       /readings/{id}/receipt [get]
func (s *Server) PrintReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := s.paymentSvc.Receipt(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := s.renderer.RenderReceipt(pdf.ReceiptData{
		IssueDate:       receipt.PaidAt,
		MeterNumber:     receipt.MeterNumber,
		CustomerName:    receipt.CustomerName,
		PreviousReading: receipt.PreviousReading,
		CurrentReading:  receipt.CurrentReading,
		ConsumptionM3:   receipt.ConsumptionM3,
		Amount:          receipt.Amount,
	})
	if err != nil {
		s.log.Error("render receipt", zap.String("reading_id", receipt.ReadingID), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	respondPDF(c, pdf.ReceiptFilename(receipt.MeterNumber, receipt.PaidAt), body)
}
