package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mschot/dbcalm-open-backend/internal/api/dto"
	"github.com/mschot/dbcalm-open-backend/internal/api/util"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/internal/core/repository"
	"github.com/mschot/dbcalm-open-backend/internal/core/service"
)

// Allowed fields for restore queries and ordering
var (
	restoreQueryFields = []string{"id", "backup_id", "backup_timestamp", "target", "target_path", "start_time", "end_time", "process_id"}
	restoreOrderFields = []string{"id", "start_time", "end_time", "backup_timestamp"}
)

type RestoreHandler struct {
	restoreService *service.RestoreService
	backupRepo     repository.BackupRepository
}

func NewRestoreHandler(restoreService *service.RestoreService, backupRepo repository.BackupRepository) *RestoreHandler {
	return &RestoreHandler{
		restoreService: restoreService,
		backupRepo:     backupRepo,
	}
}

// CreateRestore handles POST /restores
func (h *RestoreHandler) CreateRestore(c *gin.Context) {
	var req dto.CreateRestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Reject unknown backups before dispatching the async job.
	backup, err := h.backupRepo.FindByID(c.Request.Context(), req.BackupID)
	if err != nil || backup == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not Found",
			Message: fmt.Sprintf("%s not found", req.BackupID),
			Code:    http.StatusNotFound,
		})
		return
	}

	var process *domain.Process

	if req.Target == "database" {
		process, err = h.restoreService.RestoreToDatabase(c.Request.Context(), req.BackupID)
	} else {
		process, err = h.restoreService.RestoreToFolder(c.Request.Context(), req.BackupID)
	}

	if err != nil {
		writeServiceError(c, err)
		return
	}

	link := fmt.Sprintf("/status/%s", process.CommandID)
	response := dto.AsyncResponse{
		Status:     string(process.Status),
		Link:       &link,
		PID:        &process.CommandID,
		ResourceID: &req.BackupID, // Resource is the backup being restored
	}

	c.JSON(http.StatusAccepted, response)
}

// ListRestores handles GET /restores
func (h *RestoreHandler) ListRestores(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	filter := repository.RestoreFilter{
		ListFilter: util.ListFilter{
			Page:    page,
			PerPage: perPage,
		},
	}

	if queryStr := c.Query("query"); queryStr != "" {
		filters, err := util.ParseQueryString(queryStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}

		if err := util.ValidateFilterFields(filters, restoreQueryFields); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}

		filter.Filters = filters
	}

	if orderStr := c.Query("order"); orderStr != "" {
		orders, err := util.ParseOrderString(orderStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}

		if err := util.ValidateOrderFields(orders, restoreOrderFields); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}

		filter.Order = orders
	}

	restores, err := h.restoreService.ListRestores(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	count, _ := h.restoreService.CountRestores(c.Request.Context(), filter)

	totalPages := 0
	if perPage > 0 {
		totalPages = (count + perPage - 1) / perPage
	}

	response := dto.RestoreListResponse{
		Items: make([]dto.RestoreResponse, len(restores)),
		Pagination: dto.PaginationInfo{
			Total:      count,
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
		},
	}

	for i, restore := range restores {
		response.Items[i] = toRestoreResponse(restore)
	}

	c.JSON(http.StatusOK, response)
}

// GetRestore handles GET /restores/:id
func (h *RestoreHandler) GetRestore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid restore ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	restore, err := h.restoreService.GetRestore(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not Found",
			Message: fmt.Sprintf("Restore not found: %d", id),
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, toRestoreResponse(restore))
}

func toRestoreResponse(restore *domain.Restore) dto.RestoreResponse {
	return dto.RestoreResponse{
		ID:              restore.ID,
		BackupID:        restore.BackupID,
		BackupTimestamp: restore.BackupTimestamp,
		Target:          string(restore.Target),
		TargetPath:      restore.TargetPath,
		StartTime:       restore.StartTime,
		EndTime:         restore.EndTime,
		ProcessID:       restore.ProcessID,
	}
}
