package server

import (
	"github.com/gin-gonic/gin"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
)

type recordReadingRequest struct {
	CustomerID     string `json:"customer_id" form:"customer_id"`
	ReadingDate    string `json:"reading_date" form:"reading_date"`
	CurrentReading string `json:"current_reading" form:"current_reading"`
}

type editReadingRequest struct {
	CurrentReading string `json:"current_reading"`
	ReadingDate    string `json:"reading_date"`
}

// @Summary      Record Reading
// @Description  Record a meter reading and bill it with the current tariff. The reading is stored as PENDING.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Param        request body recordReadingRequest true "Record Reading Request"
// @Success      201  {object}  DataResponse
// @Router       /readings [post]
func (s *Server) RecordReading(c *gin.Context) {
	var req recordReadingRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.Record(c.Request.Context(), actorFrom(c), readingdomain.RecordRequest{
		CustomerID:     req.CustomerID,
		ReadingDate:    req.ReadingDate,
		CurrentReading: req.CurrentReading,
		IdempotencyKey: idempotencyKeyFromHeader(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "reading.record", "reading", resp.ID, map[string]any{
		"customer_id":    resp.CustomerID,
		"consumption_m3": resp.ConsumptionM3.String(),
		"amount":         resp.Amount.StringFixed(2),
	})

	respondCreated(c, resp)
}

// @Summary      Preview Reading
// @Description  Price a prospective reading without storing it
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        request body recordReadingRequest true "Preview Request"
// @Success      200  {object}  DataResponse
// @Router       /readings/preview [post]
func (s *Server) PreviewReading(c *gin.Context) {
	var req recordReadingRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.readingSvc.Preview(c.Request.Context(), actorFrom(c), readingdomain.RecordRequest{
		CustomerID:     req.CustomerID,
		ReadingDate:    req.ReadingDate,
		CurrentReading: req.CurrentReading,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, bill)
}

// @Summary      Edit Reading
// @Description  Correct the current value or date of a PENDING reading. Consumption and amount are recomputed.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Reading ID"
// @Param        request  body  editReadingRequest  true  "Edit Reading Request"
// @Success      200  {object}  DataResponse
// @Router       /readings/{id} [patch]
func (s *Server) EditReading(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req editReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.Edit(c.Request.Context(), actorFrom(c), readingdomain.EditRequest{
		ID:             id,
		CurrentReading: req.CurrentReading,
		ReadingDate:    req.ReadingDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "reading.edit", "reading", resp.ID, map[string]any{
		"current_reading": resp.CurrentReading.String(),
		"amount":          resp.Amount.StringFixed(2),
	})

	respondData(c, resp)
}

// @Summary      Get Reading
// @Tags         readings
// @Produce      json
// @Param        id   path      string  true  "Reading ID"
// @Success      200  {object}  DataResponse
// @Router       /readings/{id} [get]
func (s *Server) GetReading(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.readingSvc.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Recent Readings
// @Tags         readings
// @Produce      json
// @Param        limit  query  int  false  "Limit"
// @Success      200  {object}  ListResponse
// @Router       /readings/recent [get]
func (s *Server) ListRecentReadings(c *gin.Context) {
	items, err := s.readingSvc.ListRecent(c.Request.Context(), actorFrom(c), parseLimit(c.Query("limit"), readingdomain.RecentLimit))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Pending Invoices
// @Description  Unpaid readings with days overdue
// @Tags         readings
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /readings/pending [get]
func (s *Server) ListPendingReadings(c *gin.Context) {
	items, err := s.readingSvc.ListPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}
