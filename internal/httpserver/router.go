package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pymovements/gazeseg/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(environment string, store events.Repository, library *events.Library, logger *zap.Logger) (*gin.Engine, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if library == nil {
		return nil, errors.New("detector library is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	EnableStrictJSONDecoding()
	gin.SetMode(ginMode(environment))

	registry := prometheus.NewRegistry()
	metrics := newMetrics(registry)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	detect := newDetectHandler(store, library, metrics, logger)
	segmentation := newSegmentationHandler(metrics, logger)
	recordings := newRecordingsHandler(store)

	v1 := router.Group("/v1")
	v1.GET("/detectors", detect.list)
	v1.POST("/detect/:method", detect.detect)
	v1.POST("/segmentation/encode", segmentation.encode)
	v1.POST("/segmentation/decode", segmentation.decode)
	v1.POST("/time-ratio", segmentation.timeRatio)
	v1.GET("/recordings/:recording_id/events", recordings.list)
	v1.GET("/recordings/:recording_id/events/:event_id", recordings.get)

	return router, nil
}

func ginMode(environment string) string {
	switch environment {
	case "development":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeDomainError maps errors from the events package onto HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, events.ErrInvalidArgument):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, events.ErrUnknownDetector), errors.Is(err, events.ErrRecordNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, events.ErrDuplicateEventID):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
