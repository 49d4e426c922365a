package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JTL-Inc/guestlist/internal/modules/auth"
	"github.com/JTL-Inc/guestlist/internal/modules/guestlist"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/cache"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/clock"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/httpx"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/logger"
	ctxlogger "github.com/JTL-Inc/guestlist/internal/modules/pkg/logger/context"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/ratelimit"
	"github.com/JTL-Inc/guestlist/internal/modules/pkg/validatorx"
	"github.com/JTL-Inc/guestlist/internal/platform/config"
	"github.com/JTL-Inc/guestlist/internal/platform/postgres"
	platformredis "github.com/JTL-Inc/guestlist/internal/platform/redis"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logCfg := logger.SlogConfig{
		Level:     logger.LevelDebug,
		Format:    logger.FormatJSON,
		AddSource: true,
	}
	baseLogger := logger.NewSlogConfig(logCfg)
	slog.SetDefault(baseLogger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validatorx.NewValidator()
	e.HTTPErrorHandler = customErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	e.Use(middleware.BodyLimit("2MB"))
	e.Use(ContextualLoggerMiddleware(baseLogger))
	e.Use(RequestLoggerMiddleware())

	pgConn, err := postgres.NewPostgresConnection(ctx, *cfg)
	if err != nil {
		return err
	}
	defer pgConn.Close()

	redisConn, err := platformredis.NewRedisConnection(ctx, *cfg)
	if err != nil {
		return err
	}
	defer redisConn.Close()

	systemClock := &clock.SystemClock{}

	// ----- Auth module dependencies ----- //

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, systemClock)
	tokenRepo := auth.NewPostgresTokenRepository(pgConn.Pool)
	tokenSvc := auth.NewTokenService(tokenRepo, jwtManager, cfg.Auth.RefreshTokenTTL, systemClock)

	userRepo := auth.NewPostgresUserRepository(pgConn.Pool)
	passwords := auth.NewPasswordManager(cfg.Auth.PasswordPepper)
	loginLimiter := ratelimit.NewRedisLimiter(redisConn.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow, "login:attempts")
	authSvc := auth.NewService(userRepo, tokenSvc, passwords, loginLimiter)

	otpStore := auth.NewRedisOTPStore(redisConn.Client)
	otpLimiter := ratelimit.NewRedisLimiter(redisConn.Client, cfg.OTP.MaxAttempts, cfg.OTP.AttemptWindow, "otp:attempts")
	otpSvc := auth.NewOTPService(otpStore, otpLimiter, auth.LogDeliverer{}, cfg.OTP.CodeTTL, systemClock)

	authHandler := auth.NewAuthHandler(authSvc, otpSvc, cfg.Auth.RefreshTokenTTL, true)

	// ----- Guestlist module dependencies ----- //

	pageCache := cache.NewRedisCache(redisConn.Client)
	guestRepo := guestlist.NewPostgresGuestRepository(pgConn.Pool)
	guestlistSvc := guestlist.NewService(guestRepo, pageCache, cfg.Cache.PageTTL, systemClock)
	guestlistHandler := guestlist.NewGuestListHandler(guestlistSvc)

	apiRouteGroup := e.Group("/api/v1")
	authHandler.RegisterRoutes(apiRouteGroup)

	protectedGroup := apiRouteGroup.Group("", auth.RequireAuth(tokenSvc))
	authHandler.RegisterProtectedRoutes(protectedGroup)
	guestlistHandler.RegisterRoutes(protectedGroup)

	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
	return nil
}

// ContextualLoggerMiddleware creates a request-scoped logger containing the request ID
// and injects it into the standard `context.Context` for use in downstream handlers and services
func ContextualLoggerMiddleware(baseLogger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			requestLogger := baseLogger.With(slog.String("request_id", requestID))

			ctx := c.Request().Context()
			ctxWithLogger := ctxlogger.SetLogger(ctx, requestLogger)
			c.SetRequest(c.Request().WithContext(ctxWithLogger))

			return next(c)
		}
	}
}

// RequestLoggerMiddleware configures and returns Echo's built-in request logger middleware
// It uses the contextual logger (injected by ContextualLoggerMiddleware) to ensure
// that every access log automatically includes the corresponding request ID
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger := ctxlogger.GetLogger(c.Request().Context())

			if v.Error == nil {
				logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "HTTP_REQUEST",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("latency", v.Latency.String()),
				)
			} else {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, "HTTP_REQUEST_ERROR",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("latency", v.Latency.String()),
					slog.String("error", v.Error.Error()),
				)
			}
			return nil
		},
	})
}

// customErrorHandler is the centralized error handler for the entire API
// It intercepts any error returned from a handler, inspects its type, and
// formats a standardized JSON error response using the httpx envelope.
// Internal details never reach the client
func customErrorHandler(err error, c echo.Context) {
	log := ctxlogger.GetLogger(c.Request().Context())
	if c.Response().Committed {
		return
	}

	// 1. Handle custom validation errors from our validatorx package
	var valErr validatorx.ValidationError
	if errors.As(err, &valErr) {
		errResp := httpx.NewAPIError(
			httpx.CodeValidation,
			"One or more fields failed validation",
			valErr.Errors,
		)
		httpx.SendAPIError(c, http.StatusBadRequest, errResp)
		return
	}

	// 2. Handle known domain errors from the AUTH and GUESTLIST modules
	var httpStatus int
	var errResp httpx.APIError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpStatus = http.StatusUnauthorized
		errResp = httpx.NewAPIError(httpx.CodeInvalidCredentials, err.Error(), nil)

	case errors.Is(err, auth.ErrTokenExpired):
		httpStatus = http.StatusUnauthorized
		errResp = httpx.NewAPIError(httpx.CodeTokenExpired, err.Error(), nil)

	case errors.Is(err, auth.ErrTokenMalformed):
		httpStatus = http.StatusUnauthorized
		errResp = httpx.NewAPIError(httpx.CodeTokenMalformed, err.Error(), nil)

	case errors.Is(err, auth.ErrTokenRevoked):
		httpStatus = http.StatusUnauthorized
		errResp = httpx.NewAPIError(httpx.CodeTokenRevoked, err.Error(), nil)

	case errors.Is(err, auth.ErrRateLimited), errors.Is(err, auth.ErrOTPLocked):
		httpStatus = http.StatusTooManyRequests
		errResp = httpx.NewAPIError(httpx.CodeRateLimited, err.Error(), "retry after the attempt window has passed")

	case errors.Is(err, auth.ErrOTPMismatch):
		httpStatus = http.StatusUnauthorized
		errResp = httpx.NewAPIError(httpx.CodeOTPMismatch, err.Error(), nil)

	case errors.Is(err, auth.ErrOTPExpired):
		httpStatus = http.StatusGone
		errResp = httpx.NewAPIError(httpx.CodeOTPExpired, err.Error(), nil)

	case errors.Is(err, auth.ErrEmailAlreadyInUse):
		httpStatus = http.StatusConflict
		errResp = httpx.NewAPIError(httpx.CodeEmailInUse, err.Error(), nil)

	case errors.Is(err, guestlist.ErrInvalidCursor), errors.Is(err, guestlist.ErrGuestNameRequired):
		httpStatus = http.StatusBadRequest
		errResp = httpx.NewAPIError(httpx.CodeValidation, err.Error(), nil)

	case errors.Is(err, guestlist.ErrEventNotFound):
		httpStatus = http.StatusNotFound
		errResp = httpx.NewAPIError(httpx.CodeNotFound, err.Error(), nil)
	}

	if httpStatus != 0 {
		httpx.SendAPIError(c, httpStatus, errResp)
		return
	}

	// 3. Handle generic Echo HTTP errors
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		errResp = httpx.NewAPIError(httpx.CodeValidation, fmt.Sprintf("%v", httpErr.Message), nil)
		httpx.SendAPIError(c, httpErr.Code, errResp)
		return
	}

	// 4. Fallback for any other unexpected error
	log.Error("unhandled internal error", slog.String("error", err.Error()))
	errResp = httpx.NewAPIError(
		httpx.CodeInternal,
		"An unexpected error occurred",
		nil,
	)
	httpx.SendAPIError(c, http.StatusInternalServerError, errResp)
}
