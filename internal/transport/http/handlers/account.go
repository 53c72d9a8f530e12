package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfare-dev/wayfare/internal/transport/http/middleware"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

// AccountHandler exposes account profile and verification endpoints.
// All routes require an authenticated session.
type AccountHandler struct {
	accounts     *usecase.AccountService
	sessions     *usecase.SessionService
	verification *usecase.VerificationService
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(accounts *usecase.AccountService, sessions *usecase.SessionService, verification *usecase.VerificationService) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		sessions:     sessions,
		verification: verification,
	}
}

// RegisterRoutes binds account routes. The group must already carry auth middleware.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.me)
	r.PATCH("/nickname", h.updateNickname)
	r.PATCH("/deactivate", h.deactivate)
	r.POST("/verify/send", h.sendVerification)
	r.POST("/verify/confirm", h.confirmVerification)
}

func (h *AccountHandler) me(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}

func (h *AccountHandler) updateNickname(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req NicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "nickname is required"))
		return
	}

	if err := h.accounts.UpdateNickname(c.Request.Context(), accountID, req.Nickname); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidNickname, Status: http.StatusBadRequest, Message: "invalid nickname"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to update nickname")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "nickname updated"})
}

func (h *AccountHandler) deactivate(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.sessions.Deactivate(c.Request.Context(), accountID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to deactivate account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account deactivated"})
}

func (h *AccountHandler) sendVerification(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.verification.IssueChallenge(c.Request.Context(), accountID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusBadRequest, Message: "email already verified"},
			{Err: usecase.ErrDeliveryFailure, Status: http.StatusInternalServerError, Message: "failed to deliver verification code"},
		}, http.StatusInternalServerError, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

func (h *AccountHandler) confirmVerification(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ConfirmCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "verification code is required"))
		return
	}

	if err := h.verification.ConfirmChallenge(c.Request.Context(), accountID, req.Code); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusBadRequest, Message: "email already verified"},
			{Err: usecase.ErrMissingCode, Status: http.StatusBadRequest, Message: "verification code is required"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "verification code expired"},
			{Err: usecase.ErrCodeMismatch, Status: http.StatusBadRequest, Message: "verification code does not match"},
		}, http.StatusInternalServerError, "failed to confirm verification code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}
