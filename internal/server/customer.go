package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/railzwaylabs/waterworks/internal/customer/domain"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
)

type registerCustomerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	SectorID    string `json:"sector_id"`
	Phone       string `json:"phone"`
	MeterNumber string `json:"meter_number"`
}

// @Summary      Register Customer
// @Description  Register a new customer in a sector
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Param        request body registerCustomerRequest true "Register Customer Request"
// @Success      201  {object}  DataResponse
// @Router       /customers [post]
func (s *Server) RegisterCustomer(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Register(c.Request.Context(), actorFrom(c), customerdomain.RegisterRequest{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		SectorID:       strings.TrimSpace(req.SectorID),
		Phone:          strings.TrimSpace(req.Phone),
		MeterNumber:    strings.TrimSpace(req.MeterNumber),
		IdempotencyKey: idempotencyKeyFromHeader(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "customer.register", "customer", resp.ID, map[string]any{
		"meter_number": resp.MeterNumber,
		"sector_id":    resp.SectorID,
	})

	respondCreated(c, resp)
}

// @Summary      List Customers
// @Description  Page through all customers, newest first
// @Tags         customers
// @Produce      json
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /customers [get]
func (s *Server) ListCustomers(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), actorFrom(c), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Customers, resp.PageInfo)
}

// @Summary      Recent Customers
// @Tags         customers
// @Produce      json
// @Param        limit  query  int  false  "Limit"
// @Success      200  {object}  ListResponse
// @Router       /customers/recent [get]
func (s *Server) ListRecentCustomers(c *gin.Context) {
	items, err := s.customerSvc.ListRecent(c.Request.Context(), actorFrom(c), parseLimit(c.Query("limit"), customerdomain.RecentLimit))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Active Customers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /customers/active [get]
func (s *Server) ListActiveCustomers(c *gin.Context) {
	items, err := s.customerSvc.ListActive(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Search Customers
// @Description  Match active customers by name or meter number. Fewer than two characters returns nothing.
// @Tags         customers
// @Produce      json
// @Param        q  query  string  true  "Query"
// @Success      200  {object}  ListResponse
// @Router       /customers/search [get]
func (s *Server) SearchCustomers(c *gin.Context) {
	items, err := s.customerSvc.Search(c.Request.Context(), actorFrom(c), c.Query("q"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Get Customer
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  DataResponse
// @Router       /customers/{id} [get]
func (s *Server) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.customerSvc.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Deactivate Customer
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  DataResponse
// @Router       /customers/{id}/deactivate [post]
func (s *Server) DeactivateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.customerSvc.Deactivate(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "customer.deactivate", "customer", resp.ID, map[string]any{
		"meter_number": resp.MeterNumber,
	})

	respondData(c, resp)
}
