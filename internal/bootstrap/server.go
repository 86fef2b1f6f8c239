package bootstrap

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skytail/aeroreserva/api"
	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/metrics"
)

// Handlers groups everything the HTTP surface exposes.
type Handlers struct {
	Flights       *api.FlightHandler
	Reservations  *api.ReservationHandler
	Payments      *api.PaymentHandler
	Notifications *api.NotificationHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, verifier auth.TokenVerifier, handlers Handlers, log *logrus.Logger) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg, verifier, handlers, log),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.WithField("address", cfg.HTTP.Address).Info("http server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// NewRouter builds the gin engine with the ambient middleware and all routes.
// Exported separately so handler tests can run requests through the real
// routing table.
func NewRouter(cfg *config.Config, verifier auth.TokenVerifier, handlers Handlers, log *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log), metrics.GinMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		engine.StaticFile("/openapi.json", filepath.Join(cfg.HTTP.SwaggerDir, "openapi.json"))
		engine.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))
	}

	// Flight search and reference data are public; everything touching a
	// user's reservations, payments or notifications requires identity.
	handlers.Flights.RegisterRoutes(engine)

	protected := engine.Group("/", auth.Middleware(verifier))
	handlers.Reservations.RegisterRoutes(protected)
	handlers.Payments.RegisterRoutes(protected)
	handlers.Notifications.RegisterRoutes(protected)

	return engine
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Error("request failed")
			return
		}
		entry.Info("request handled")
	}
}
