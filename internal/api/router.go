package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/quicknotes/notes-api/internal/api/handler"
	"github.com/quicknotes/notes-api/internal/api/middleware"
	"github.com/quicknotes/notes-api/internal/core/ports"
	infrahttp "github.com/quicknotes/notes-api/internal/infrastructure/http"
	"github.com/quicknotes/notes-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	AuthService ports.AuthService
	NoteService ports.NoteService
	Verifier    ports.TokenVerifier
	Logger      zerolog.Logger

	// Registerer receives the HTTP request metrics; Gatherer backs /metrics.
	// Both default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Checks are the readiness probes for external dependencies.
	Checks []handlers.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "notes_api",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	noteHandler := handler.NewNoteHandler(deps.NoteService)
	requireAuth := middleware.Auth(deps.Verifier)

	// --- Auth routes ---
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, requireAuth)

	// --- Note routes ---
	notes := e.Group("/api/notes")
	notes.POST("", noteHandler.Create, requireAuth)
	notes.GET("", noteHandler.List, requireAuth)
	notes.GET("/search", noteHandler.Search, requireAuth)
	notes.GET("/:id", noteHandler.Get) // public, no visibility check
	notes.PUT("/:id", noteHandler.Update, requireAuth)
	notes.DELETE("/:id", noteHandler.Delete, requireAuth)
	notes.POST("/:id/share", noteHandler.Share, requireAuth)
	notes.GET("/:id/bookmark", noteHandler.Bookmark, requireAuth)

	// --- Ops: health probes, metrics, swagger ---
	infrahttp.RegisterOps(e, deps.Gatherer, deps.Checks...)

	return e
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
