package auth

import (
	"net/http"
	"time"

	"github.com/JTL-Inc/guestlist/internal/modules/pkg/httpx"
	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh_token"

// AuthHandler holds dependencies for authentication HTTP handlers
type AuthHandler struct {
	authService     *Service
	otpService      *OTPService
	refreshTokenTTL time.Duration
	secureCookies   bool
}

func NewAuthHandler(authService *Service, otpService *OTPService, refreshTokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		otpService:      otpService,
		refreshTokenTTL: refreshTokenTTL,
		secureCookies:   secureCookies,
	}
}

// RegisterRoutes sets up the API routes for the auth module
func (h *AuthHandler) RegisterRoutes(apiRouteGroup *echo.Group) {
	authGroup := apiRouteGroup.Group("/auth")

	authGroup.POST("/signup", h.signupHandler)
	authGroup.POST("/login", h.loginHandler)
	authGroup.POST("/refresh", h.refreshHandler)
	authGroup.POST("/otp/request", h.otpRequestHandler)
	authGroup.POST("/otp/verify", h.otpVerifyHandler)
}

// RegisterProtectedRoutes sets up auth routes that require a valid access token
func (h *AuthHandler) RegisterProtectedRoutes(protectedGroup *echo.Group) {
	protectedGroup.POST("/auth/logout", h.logoutHandler)
}

// SignupRequest defines the expected JSON body for registering a new user
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the expected JSON body for authenticating a user
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPRequestRequest defines the expected JSON body for requesting a one-time code
type OTPRequestRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// OTPVerifyRequest defines the expected JSON body for verifying a one-time code
type OTPVerifyRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// TokenResponse carries only the access token. The refresh token travels
// exclusively in an HTTP-only cookie so client-side scripts cannot read it
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// OTPHandleResponse acknowledges a code request without revealing the code
type OTPHandleResponse struct {
	Handle string `json:"handle"`
}

func (h *AuthHandler) signupHandler(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return httpx.SendSuccess(c, http.StatusCreated, TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) loginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return httpx.SendSuccess(c, http.StatusOK, TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) refreshHandler(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return ErrTokenMalformed
	}

	pair, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return httpx.SendSuccess(c, http.StatusOK, TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) otpRequestHandler(c echo.Context) error {
	var req OTPRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	handle, err := h.otpService.Generate(c.Request().Context(), req.SubjectID)
	if err != nil {
		return err
	}

	return httpx.SendSuccess(c, http.StatusAccepted, OTPHandleResponse{Handle: handle})
}

func (h *AuthHandler) otpVerifyHandler(c echo.Context) error {
	var req OTPVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body format")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.otpService.Verify(c.Request().Context(), req.SubjectID, req.Code); err != nil {
		return err
	}

	return httpx.SendSuccess(c, http.StatusOK, map[string]bool{"verified": true})
}

func (h *AuthHandler) logoutHandler(c echo.Context) error {
	userID, ok := SubjectFromContext(c)
	if !ok {
		return ErrTokenMalformed
	}

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.refreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
