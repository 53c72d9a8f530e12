package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/security"
	"github.com/wayfare-dev/wayfare/internal/transport/http/middleware"
	"github.com/wayfare-dev/wayfare/internal/usecase"
)

const bearerTokenType = "Bearer"

// AuthHandler exposes signup and session endpoints.
type AuthHandler struct {
	cfg          *config.AppConfig
	sessions     *usecase.SessionService
	registration *usecase.RegistrationService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(cfg *config.AppConfig, sessions *usecase.SessionService, registration *usecase.RegistrationService) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		sessions:     sessions,
		registration: registration,
	}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.signup)
	r.POST("/login", h.login)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", middleware.RequireAuth(h.sessions), h.logout)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), usecase.SignupInput{
		Handle:   req.Handle,
		Password: req.Password,
		Nickname: req.Nickname,
		Email:    req.Email,
		Gender:   req.Gender,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrHandleTaken, Status: http.StatusBadRequest, Message: "handle already registered"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusBadRequest, Message: "email already registered"},
			{Err: usecase.ErrInvalidSignup, Status: http.StatusBadRequest, Message: "invalid signup details"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, newAccountSummary(account))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	reqCtx := middleware.GetRequestContext(c)
	pair, account, err := h.sessions.Login(c.Request.Context(), req.Handle, req.Password, domainMeta(reqCtx))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusUnauthorized, Message: "invalid handle or password"},
			{Err: usecase.ErrInvalidCredential, Status: http.StatusUnauthorized, Message: "invalid handle or password"},
			{Err: usecase.ErrAccountInactive, Status: http.StatusUnauthorized, Message: "account deactivated"},
		}, http.StatusInternalServerError, "failed to login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    h.accessExpiresIn(),
		Account:      newAccountSummary(account),
	})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh token is required"))
		return
	}

	accessToken, err := h.sessions.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingToken, Status: http.StatusBadRequest, Message: "refresh token is required"},
			{Err: usecase.ErrTokenBlacklisted, Status: http.StatusUnauthorized, Message: "refresh token revoked"},
			{Err: usecase.ErrTokenInvalid, Status: http.StatusUnauthorized, Message: "invalid refresh token"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
		ExpiresIn:   h.accessExpiresIn(),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh token is required"))
		return
	}

	claims := getSessionClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid access token"))
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.RefreshToken, claims); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingToken, Status: http.StatusBadRequest, Message: "refresh token is required"},
		}, http.StatusInternalServerError, "failed to logout")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) accessExpiresIn() int {
	ttl := h.cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return int(ttl.Seconds())
}

func domainMeta(reqCtx *middleware.RequestContext) domain.ClientMeta {
	return domain.ClientMeta{
		IP:        reqCtx.IP,
		UserAgent: reqCtx.UserAgent,
	}
}

func getSessionClaims(c *gin.Context) *security.SessionClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*security.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
