package server

import (
	"net/http"

	"NutriBuddy/internal/chat"
	"NutriBuddy/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-NutriBuddy-User"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	e.GET("/health", s.healthHandler)
	e.GET("/status", s.statusHandler)

	e.Use(LoggerMiddleware)

	// Identified routes. Every endpoint below needs to know which user is
	// talking; the handle is a client-chosen identifier, not an authenticated
	// account.
	identified := e.Group("")
	identified.Use(UserHandleMiddleware)

	// Chat routes
	identified.POST("/chat", chat.ChatHandler)
	identified.GET("/chat/ws", chat.ChatSocketHandler)
	identified.GET("/chat/history", chat.GetChatHistoryHandler)
	identified.DELETE("/chat/history", chat.ClearChatHistoryHandler)

	// Profile routes
	identified.GET("/profile", chat.GetProfileHandler)
	identified.PUT("/profile", chat.UpsertProfileHandler)
	identified.DELETE("/profile", chat.DeleteProfileHandler)

	// Daily session routes
	identified.GET("/session/today", chat.GetTodaySessionHandler)
	identified.POST("/session/reset", chat.ResetSessionHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// UserHandleMiddleware resolves the caller's identity. The handle normally
// arrives in the X-NutriBuddy-User header; WebSocket clients pass it as the
// "user" query parameter instead, since browsers cannot attach custom headers
// to upgrade requests.
func UserHandleMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		handle := c.Request().Header.Get("X-NutriBuddy-User")
		if handle == "" {
			handle = c.QueryParam("user")
		}

		if err := utility.ValidateUserHandle(handle); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		c.Set("user_handle", handle)
		return next(c)
	}
}
