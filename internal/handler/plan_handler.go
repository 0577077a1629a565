package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/service"
	"github.com/fieldcast/tourplan-backend-go/pkg/response"
)

// PlanHandler handles HTTP requests for week planning
type PlanHandler struct {
	service *service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(service *service.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

type planWeekRequest struct {
	WeekStart    string               `json:"weekStart" binding:"required"`
	Appointments []models.Appointment `json:"appointments"`
	Preset       string               `json:"preset"`
}

// PlanWeek plans a Monday-to-Friday week. An empty appointment list is
// valid and yields an empty plan.
// POST /api/v1/plan/week
func (h *PlanHandler) PlanWeek(c *gin.Context) {
	var req planWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "weekStart is required")
		return
	}

	plan, err := h.service.PlanWeek(c.Request.Context(), req.WeekStart, req.Appointments, req.Preset)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.Success(c, plan)
}
