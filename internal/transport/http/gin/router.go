package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/cinebook/internal/backend"
	"github.com/kirinyoku/cinebook/internal/flow"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/auth"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/catalog"
	"github.com/kirinyoku/cinebook/internal/service/selection"
	"github.com/kirinyoku/cinebook/internal/service/tickets"
)

// IdempotencyStore keeps the responses of requests sent with an
// Idempotency-Key.
type IdempotencyStore interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, payload []byte) error
	GetResult(ctx context.Context, key string) ([]byte, bool, error)
	Release(ctx context.Context, key string) error
}

// Options are the optional parts of the router. Nil stores and limiters
// switch the matching feature off.
type Options struct {
	Idempotency IdempotencyStore
	AuthLimiter Limiter
	AdminKey    string
	// Draining is closed when the server starts shutting down. Open event
	// streams end when it is.
	Draining <-chan struct{}
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	if err := registerValidators(); err != nil {
		logger.Error("binding validators not registered", "err", err)
	}

	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireUser := AuthMiddleware(svcs.Auth)

	authGroup := r.Group("/auth")
	{
		credentials := authGroup.Group("")
		if opts.AuthLimiter != nil {
			credentials.Use(RateLimitMiddleware(opts.AuthLimiter, logger))
		}
		credentials.POST("/sign-up", handleSignUp(svcs))
		credentials.POST("/sign-in", handleSignIn(svcs))

		authGroup.DELETE("/session", requireUser, handleSignOut(svcs))
		authGroup.GET("/me", requireUser, handleMe())
	}

	// Catalog
	r.GET("/cities", handleListCities(svcs))
	r.GET("/movies", handleListMovies(svcs))
	r.GET("/movies/:id", handleGetMovie(svcs))

	prefs := r.Group("/preferences", requireUser)
	{
		prefs.GET("/city", handleGetPreferredCity(svcs))
		prefs.PUT("/city", handlePutPreferredCity(svcs))
	}

	flows := r.Group("/flows", requireUser)
	{
		flows.POST("", handleStartFlow(svcs))
		flows.GET("/:id", handleGetFlow(svcs))
		flows.DELETE("/:id", handleCancelFlow(svcs))
		flows.GET("/:id/events", handleFlowEvents(svcs, opts.Draining))

		flows.PUT("/:id/city", handleSelectCity(svcs))
		flows.PUT("/:id/movie", handleViewMovie(svcs))
		flows.PUT("/:id/date", handleSelectDate(svcs))
		flows.PUT("/:id/theater", handleSelectTheater(svcs))
		flows.PUT("/:id/time", handleSelectTime(svcs))
		flows.POST("/:id/seats/:seat", handleToggleSeat(svcs))

		flows.POST("/:id/confirm", handleConfirm(svcs))
		flows.POST("/:id/book", handleBook(svcs, opts.Idempotency))
	}

	ticketGroup := r.Group("/tickets", requireUser)
	{
		ticketGroup.GET("", handleListTickets(svcs))
		ticketGroup.GET("/events", handleTicketEvents(svcs, opts.Draining))
		ticketGroup.GET("/:id", handleGetTicket(svcs))
		ticketGroup.GET("/:id/qrcode", handleTicketQRCode(svcs))
	}

	admin := r.Group("/admin", AdminKeyMiddleware(opts.AdminKey))
	{
		admin.POST("/movies", handleCreateMovie(svcs))
	}

	return r
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var ve *flow.ValidationError

	switch {
	// validation
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Msg, Missing: ve.Missing})
	case errors.Is(err, catalog.ErrInvalidMovie),
		errors.Is(err, auth.ErrInvalidCity):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	// not found
	case errors.Is(err, selection.ErrFlowNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "flow not found"})
	case errors.Is(err, catalog.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie not found"})
	case errors.Is(err, tickets.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	// flow lifecycle
	case errors.Is(err, flow.ErrFlowClosed):
		c.JSON(http.StatusGone, ErrorResponse{Error: "flow is closed"})
	case errors.Is(err, flow.ErrSubmissionPending):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking submission in progress"})
	// booking
	case errors.Is(err, booking.ErrBookingFailed):
		c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "booking failed, please try again"})
	// auth
	case errors.Is(err, auth.ErrAccountExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "account already exists"})
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, booking.ErrNoUser):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, tickets.ErrNoFeed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "live tickets are unavailable"})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
