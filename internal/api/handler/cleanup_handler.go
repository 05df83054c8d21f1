package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mschot/dbcalm-open-backend/internal/api/dto"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/service"
)

type CleanupHandler struct {
	cleanupService *service.CleanupService
}

func NewCleanupHandler(cleanupService *service.CleanupService) *CleanupHandler {
	return &CleanupHandler{
		cleanupService: cleanupService,
	}
}

// Cleanup handles POST /cleanup
func (h *CleanupHandler) Cleanup(c *gin.Context) {
	var req dto.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// No body means run retention for every schedule
		req.ScheduleID = nil
	}

	var process *domain.Process
	var err error

	if req.ScheduleID != nil && *req.ScheduleID > 0 {
		process, err = h.cleanupService.CleanupBySchedule(c.Request.Context(), *req.ScheduleID)
	} else {
		process, err = h.cleanupService.CleanupAll(c.Request.Context())
	}

	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Nothing expired: report success without an async job to poll.
	if process == nil {
		c.JSON(http.StatusOK, dto.AsyncResponse{Status: "success"})
		return
	}

	link := fmt.Sprintf("/status/%s", process.CommandID)
	response := dto.AsyncResponse{
		Status: string(process.Status),
		Link:   &link,
		PID:    &process.CommandID,
	}

	// Add schedule_id as resource_id if provided
	if req.ScheduleID != nil && *req.ScheduleID > 0 {
		scheduleID := fmt.Sprintf("%d", *req.ScheduleID)
		response.ResourceID = &scheduleID
	}

	c.JSON(http.StatusAccepted, response)
}
