// Package router wires handlers and middleware into the gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/YuminosukeSato/bayesbench/internal/api/handler"
	"github.com/YuminosukeSato/bayesbench/internal/api/middleware"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

// MetricsNamespace prefixes every exported Prometheus metric.
const MetricsNamespace = "bayesbench"

// Options configures the router.
type Options struct {
	Logger         log.Logger
	Metrics        *middleware.Metrics
	AllowedOrigins []string
}

// Setup creates and configures the Gin router
func Setup(svc handler.DatasetService, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = log.GetLoggerWithName("api")
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics(MetricsNamespace)
	}
	for _, s := range svc.Datasets() {
		if r, err := svc.Report(s.Name); err == nil {
			opts.Metrics.SetAccuracy(s.Name, r.AccuracyValue)
		}
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(opts.Logger))
	router.Use(opts.Metrics.Middleware())
	router.Use(middleware.Recovery(opts.Logger))

	healthHandler := handler.NewHealthHandler(svc)
	datasetHandler := handler.NewDatasetHandler(svc, opts.Logger)

	router.GET("/", datasetHandler.Welcome)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	// GET /iris, GET /banknote, ... return the bare report.
	router.GET("/:name", datasetHandler.LegacyReport)

	v1 := router.Group("/api/v1")
	{
		datasets := v1.Group("/datasets")
		{
			datasets.GET("", datasetHandler.ListDatasets)
			datasets.GET("/:name", datasetHandler.GetReport)
			datasets.GET("/:name/chart.png", datasetHandler.GetChart)
			datasets.POST("/:name/predict", datasetHandler.Predict)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		handler.RespondError(c, http.StatusNotFound, handler.CodeNotFound, "route not found")
	})

	return router
}

// WithCORS wraps h so that browsers from allowedOrigins may call the API.
// An empty list or "*" allows every origin.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return cors.AllowAll().Handler(h)
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(h)
}

// New returns the complete HTTP handler: the gin engine behind CORS.
func New(svc handler.DatasetService, opts Options) http.Handler {
	return WithCORS(Setup(svc, opts), opts.AllowedOrigins)
}
