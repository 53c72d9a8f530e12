package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// AccountSummary describes the account view returned by the API.
type AccountSummary struct {
	ID            string  `json:"id"`
	Handle        string  `json:"handle"`
	Email         string  `json:"email"`
	Nickname      string  `json:"nickname"`
	Gender        *string `json:"gender,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	Active        bool    `json:"active"`
}

func newAccountSummary(account *domain.Account) AccountSummary {
	return AccountSummary{
		ID:            account.ID,
		Handle:        account.Handle,
		Email:         account.Email,
		Nickname:      account.Nickname,
		Gender:        account.Gender,
		EmailVerified: account.EmailVerified,
		Active:        account.Active,
	}
}

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Handle   string  `json:"handle" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Nickname string  `json:"nickname" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Gender   *string `json:"gender"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	Account      AccountSummary `json:"account"`
}

// RefreshRequest represents the payload to refresh an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse returns the newly minted access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// NicknameRequest defines the payload for the nickname update endpoint.
type NicknameRequest struct {
	Nickname string `json:"nickname" binding:"required"`
}

// ConfirmCodeRequest carries the submitted verification code.
type ConfirmCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// PlannerRequest defines the payload for planner create and update.
type PlannerRequest struct {
	Title       string `json:"title" binding:"required"`
	OrderingNum int64  `json:"ordering_num"`
}

// PlannerResponse describes a planner row.
type PlannerResponse struct {
	ID          string    `json:"id"`
	OrderingNum int64     `json:"ordering_num"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newPlannerResponse(planner *domain.Planner) PlannerResponse {
	return PlannerResponse{
		ID:          planner.ID,
		OrderingNum: planner.OrderingNum,
		Title:       planner.Title,
		CreatedAt:   planner.CreatedAt,
		UpdatedAt:   planner.UpdatedAt,
	}
}

// PlanRequest defines the payload for plan create and update.
type PlanRequest struct {
	Title       string     `json:"title" binding:"required"`
	OrderingNum int64      `json:"ordering_num"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// PlanResponse describes a plan row.
type PlanResponse struct {
	ID          string     `json:"id"`
	PlannerID   string     `json:"planner_id"`
	OrderingNum int64      `json:"ordering_num"`
	Title       string     `json:"title"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newPlanResponse(plan *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:          plan.ID,
		PlannerID:   plan.PlannerID,
		OrderingNum: plan.OrderingNum,
		Title:       plan.Title,
		StartDate:   plan.StartDate,
		EndDate:     plan.EndDate,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}

// CalendarResponse describes a calendar row.
type CalendarResponse struct {
	ID        string    `json:"id"`
	PlannerID string    `json:"planner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newCalendarResponse(calendar *domain.Calendar) CalendarResponse {
	return CalendarResponse{
		ID:        calendar.ID,
		PlannerID: calendar.PlannerID,
		CreatedAt: calendar.CreatedAt,
	}
}
