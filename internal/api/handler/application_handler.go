package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvaldes/apptrack/internal/api/dto"
	"github.com/jvaldes/apptrack/internal/tracker/domain"
	"github.com/jvaldes/apptrack/internal/tracker/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateApplication handles POST /api/v1/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	app := &domain.Application{
		Company:       req.Company,
		Role:          req.Role,
		OfferURL:      req.OfferURL,
		Notes:         req.Notes,
		Tags:          req.Tags,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		OfferedSalary: req.OfferedSalary,
		Location:      req.Location,
		WorkMode:      req.WorkMode,
	}

	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app.Status = status
	}

	if req.ApplicationDate != "" {
		d, err := domain.ParseDate(req.ApplicationDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app.ApplicationDate = d
	}

	if req.FollowUpDate != "" {
		d, err := domain.ParseDate(req.FollowUpDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app.FollowUpDate = &d
	}

	if req.ResponseDate != "" {
		d, err := domain.ParseDate(req.ResponseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app.ResponseDate = &d
	}

	created, err := h.store.Create(c.Request.Context(), app)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create application", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create application",
		})
		return
	}

	c.JSON(http.StatusCreated, dto.FromApplication(created))
}

// GetApplication handles GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		h.logger.Error("Failed to get application", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get application",
		})
		return
	}

	c.JSON(http.StatusOK, dto.FromApplication(app))
}

// ListApplications handles GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var req dto.ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	filter := storage.Filter{
		Company:   req.Company,
		Tags:      req.Tags,
		Search:    req.Search,
		OrderBy:   req.OrderBy,
		Ascending: req.Order == "asc",
	}

	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Status = status
	}

	paged := filter
	paged.Offset = (req.Page - 1) * req.PageSize
	paged.Limit = req.PageSize

	apps, err := h.store.List(c.Request.Context(), paged)
	if err != nil {
		h.listError(c, err)
		return
	}

	// Second unpaged query for the total; cheap at this scale.
	all, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.listError(c, err)
		return
	}

	total := len(all)
	totalPages := (total + req.PageSize - 1) / req.PageSize

	c.JSON(http.StatusOK, dto.ListApplicationsResponse{
		Applications: dto.FromApplications(apps),
		Total:        total,
		Page:         req.Page,
		TotalPages:   totalPages,
	})
}

func (h *ApplicationHandler) listError(c *gin.Context, err error) {
	if isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("Failed to list applications", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to list applications",
	})
}

// UpdateApplication handles PUT /api/v1/applications/:id
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	patch, err := patchFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.updateError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromApplication(updated))
}

// ChangeStatus handles POST /api/v1/applications/:id/status
// Quick status change; moving to Rejected or Accepted also records today's
// date as the response date.
func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.Patch{Status: &status}
	if status == domain.StatusRejected || status == domain.StatusAccepted {
		today := domain.DateOnly(time.Now())
		patch.ResponseDate = &today
	}

	updated, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.updateError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromApplication(updated))
}

func (h *ApplicationHandler) updateError(c *gin.Context, id int64, err error) {
	if errors.Is(err, domain.ErrApplicationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("Failed to update application",
		slog.Int64("id", id),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to update application",
	})
}

// DeleteApplication handles DELETE /api/v1/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete application",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete application",
		})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// patchFromRequest converts the partial-update request into a domain patch,
// parsing date strings and the status enum.
func patchFromRequest(req *dto.UpdateApplicationRequest) (domain.Patch, error) {
	patch := domain.Patch{
		Company:       req.Company,
		Role:          req.Role,
		OfferURL:      req.OfferURL,
		Notes:         req.Notes,
		Tags:          req.Tags,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		OfferedSalary: req.OfferedSalary,
		Location:      req.Location,
		WorkMode:      req.WorkMode,
	}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return domain.Patch{}, err
		}
		patch.Status = &status
	}

	if req.ApplicationDate != nil && *req.ApplicationDate != "" {
		d, err := domain.ParseDate(*req.ApplicationDate)
		if err != nil {
			return domain.Patch{}, err
		}
		patch.ApplicationDate = &d
	}

	if req.FollowUpDate != nil {
		if *req.FollowUpDate == "" {
			patch.ClearFollowUp = true
		} else {
			d, err := domain.ParseDate(*req.FollowUpDate)
			if err != nil {
				return domain.Patch{}, err
			}
			patch.FollowUpDate = &d
		}
	}

	if req.ResponseDate != nil {
		if *req.ResponseDate == "" {
			patch.ClearResponse = true
		} else {
			d, err := domain.ParseDate(*req.ResponseDate)
			if err != nil {
				return domain.Patch{}, err
			}
			patch.ResponseDate = &d
		}
	}

	return patch, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "id must be an integer",
		})
		return 0, false
	}
	return id, true
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidDate) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrMissingField) ||
		errors.Is(err, storage.ErrInvalidOrderBy)
}
