package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	sectordomain "github.com/railzwaylabs/waterworks/internal/sector/domain"
)

type createSectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// @Summary      List Sectors
// @Description  Sectors with active and delinquent customer counts
// @Tags         sectors
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /sectors [get]
func (s *Server) ListSectors(c *gin.Context) {
	items, err := s.sectorSvc.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Sector Detail
// @Description  A sector and its active customers with their pending debt
// @Tags         sectors
// @Produce      json
// @Param        id   path      string  true  "Sector ID"
// @Success      200  {object}  DataResponse
// @Router       /sectors/{id} [get]
func (s *Server) GetSector(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.sectorSvc.Detail(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Create Sector
// @Tags         sectors
// @Accept       json
// @Produce      json
// @Param        request body createSectorRequest true "Create Sector Request"
// @Success      201  {object}  DataResponse
// @Router       /sectors [post]
func (s *Server) CreateSector(c *gin.Context) {
	var req createSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sectorSvc.Create(c.Request.Context(), actorFrom(c), sectordomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "sector.create", "sector", resp.ID, map[string]any{"name": resp.Name})

	respondCreated(c, resp)
}
