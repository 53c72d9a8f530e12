package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfare-dev/wayfare/internal/transport/http/middleware"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

// PlannerHandler exposes planner, plan and calendar endpoints.
// All routes require an authenticated session and every operation is scoped
// to the calling account's own planners.
type PlannerHandler struct {
	planners *usecase.PlannerService
}

// NewPlannerHandler constructs PlannerHandler.
func NewPlannerHandler(planners *usecase.PlannerService) *PlannerHandler {
	return &PlannerHandler{planners: planners}
}

// RegisterRoutes binds planner routes. The group must already carry auth middleware.
func (h *PlannerHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.createPlanner)
	r.GET("", h.listPlanners)
	r.PUT("/:plannerID", h.updatePlanner)
	r.DELETE("/:plannerID", h.deletePlanner)

	r.POST("/:plannerID/plans", h.createPlan)
	r.GET("/:plannerID/plans", h.listPlans)
	r.PUT("/:plannerID/plans/:planID", h.updatePlan)
	r.DELETE("/:plannerID/plans/:planID", h.deletePlan)

	r.POST("/:plannerID/calendars", h.createCalendar)
	r.GET("/:plannerID/calendars", h.listCalendars)
	r.DELETE("/:plannerID/calendars/:calendarID", h.deleteCalendar)
}

var plannerErrorCases = []ErrorCase{
	{Err: usecase.ErrPlannerNotFound, Status: http.StatusNotFound, Message: "planner not found"},
	{Err: usecase.ErrPlanNotFound, Status: http.StatusNotFound, Message: "plan not found"},
	{Err: usecase.ErrCalendarNotFound, Status: http.StatusNotFound, Message: "calendar not found"},
	{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "planner belongs to another account"},
	{Err: usecase.ErrInvalidTitle, Status: http.StatusBadRequest, Message: "title is required"},
}

func (h *PlannerHandler) createPlanner(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PlannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid planner payload"))
		return
	}

	planner, err := h.planners.CreatePlanner(c.Request.Context(), accountID, req.Title, req.OrderingNum)
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to create planner")
		return
	}

	c.JSON(http.StatusCreated, newPlannerResponse(planner))
}

func (h *PlannerHandler) listPlanners(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	planners, err := h.planners.ListPlanners(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to list planners")
		return
	}

	out := make([]PlannerResponse, 0, len(planners))
	for i := range planners {
		out = append(out, newPlannerResponse(&planners[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PlannerHandler) updatePlanner(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PlannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid planner payload"))
		return
	}

	planner, err := h.planners.UpdatePlanner(c.Request.Context(), accountID, c.Param("plannerID"), req.Title, req.OrderingNum)
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to update planner")
		return
	}

	c.JSON(http.StatusOK, newPlannerResponse(planner))
}

func (h *PlannerHandler) deletePlanner(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.planners.DeletePlanner(c.Request.Context(), accountID, c.Param("plannerID")); err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to delete planner")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "planner deleted"})
}

func (h *PlannerHandler) createPlan(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid plan payload"))
		return
	}

	plan, err := h.planners.CreatePlan(c.Request.Context(), accountID, c.Param("plannerID"), req.Title, req.OrderingNum, req.StartDate, req.EndDate)
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to create plan")
		return
	}

	c.JSON(http.StatusCreated, newPlanResponse(plan))
}

func (h *PlannerHandler) listPlans(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	plans, err := h.planners.ListPlans(c.Request.Context(), accountID, c.Param("plannerID"))
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to list plans")
		return
	}

	out := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, newPlanResponse(&plans[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PlannerHandler) updatePlan(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid plan payload"))
		return
	}

	plan, err := h.planners.UpdatePlan(c.Request.Context(), accountID, c.Param("planID"), req.Title, req.OrderingNum, req.StartDate, req.EndDate)
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to update plan")
		return
	}

	c.JSON(http.StatusOK, newPlanResponse(plan))
}

func (h *PlannerHandler) deletePlan(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.planners.DeletePlan(c.Request.Context(), accountID, c.Param("planID")); err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to delete plan")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "plan deleted"})
}

func (h *PlannerHandler) createCalendar(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	calendar, err := h.planners.CreateCalendar(c.Request.Context(), accountID, c.Param("plannerID"))
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to create calendar")
		return
	}

	c.JSON(http.StatusCreated, newCalendarResponse(calendar))
}

func (h *PlannerHandler) listCalendars(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	calendars, err := h.planners.ListCalendars(c.Request.Context(), accountID, c.Param("plannerID"))
	if err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to list calendars")
		return
	}

	out := make([]CalendarResponse, 0, len(calendars))
	for i := range calendars {
		out = append(out, newCalendarResponse(&calendars[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PlannerHandler) deleteCalendar(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.planners.DeleteCalendar(c.Request.Context(), accountID, c.Param("calendarID")); err != nil {
		RespondWithMappedError(c, err, plannerErrorCases, http.StatusInternalServerError, "failed to delete calendar")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "calendar deleted"})
}
