package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReadinessState string

const (
	ReadinessStateReady    ReadinessState = "ready"
	ReadinessStateNotReady ReadinessState = "not_ready"
	ReadinessStateOptional ReadinessState = "optional"
)

type ReadinessIssue struct {
	ID       string            `json:"id"`
	Status   ReadinessState    `json:"status"`
	Evidence map[string]string `json:"evidence,omitempty"`
}

type ReadinessResponse struct {
	Ready       bool             `json:"ready"`
	SystemState ReadinessState   `json:"system_state"`
	Issues      []ReadinessIssue `json:"issues"`
}

// @Summary      Liveness
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Readiness
// @Description  Reports whether the database is reachable, the schema is current and the committee has been set up.
// @Tags         system
// @Produce      json
// @Success      200  {object}  ReadinessResponse
// @Failure      503  {object}  ReadinessResponse
// @Router       /readyz [get]
func (s *Server) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	issues := make([]ReadinessIssue, 0, 4)
	isReady := true

	// Required
	if err := s.pingDatabase(ctx); err != nil {
		isReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "database_reachable",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{ID: "database_reachable", Status: ReadinessStateReady})
	}

	if s.schemaGate == nil {
		issues = append(issues, ReadinessIssue{ID: "schema_current", Status: ReadinessStateOptional})
	} else if err := s.schemaGate.MustBeActive(ctx); err != nil {
		isReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "schema_current",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{ID: "schema_current", Status: ReadinessStateReady})
	}

	// Recommended, does not affect the state.
	if isReady {
		issues = append(issues,
			s.countIssue(ctx, "admin_present", `SELECT COUNT(1) FROM users WHERE role = 'ADMIN' AND active = ?`, true),
			s.countIssue(ctx, "sector_exists", `SELECT COUNT(1) FROM sectors`),
		)
	}

	state := ReadinessStateReady
	status := http.StatusOK
	if !isReady {
		state = ReadinessStateNotReady
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, ReadinessResponse{
		Ready:       isReady,
		SystemState: state,
		Issues:      issues,
	})
}

func (s *Server) pingDatabase(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Server) countIssue(ctx context.Context, id, query string, args ...any) ReadinessIssue {
	var count int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&count).Error; err != nil {
		return ReadinessIssue{ID: id, Status: ReadinessStateOptional, Evidence: map[string]string{"error": err.Error()}}
	}
	if count == 0 {
		return ReadinessIssue{ID: id, Status: ReadinessStateOptional, Evidence: map[string]string{"count": "0"}}
	}
	return ReadinessIssue{ID: id, Status: ReadinessStateReady, Evidence: map[string]string{"count": strconv.FormatInt(count, 10)}}
}
