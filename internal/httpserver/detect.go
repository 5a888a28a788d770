package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pymovements/gazeseg/internal/events"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxDetectBodyBytes int64 = 32 << 20

type detectHandler struct {
	store   events.Repository
	library *events.Library
	metrics *metrics
	logger  *zap.Logger
}

type detectRequest struct {
	RecordingID string               `json:"recording_id"`
	Samples     events.SampleColumns `json:"samples"`
	Params      json.RawMessage      `json:"params"`
}

type detectResponse struct {
	Method  string          `json:"method"`
	Events  events.Table    `json:"events"`
	Records []events.Record `json:"records,omitempty"`
}

func newDetectHandler(store events.Repository, library *events.Library, metrics *metrics, logger *zap.Logger) detectHandler {
	return detectHandler{store: store, library: library, metrics: metrics, logger: logger}
}

func (h detectHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detectors": h.library.Names()})
}

func (h detectHandler) detect(c *gin.Context) {
	method := c.Param("method")
	detector, err := h.library.Lookup(method)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDetectBodyBytes)

	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	table, err := detector(req.Samples.Samples(), req.Params)
	if err != nil {
		h.metrics.detections.WithLabelValues(method, "rejected").Inc()
		writeDomainError(c, err)
		return
	}
	h.metrics.detections.WithLabelValues(method, "ok").Inc()
	h.metrics.detectedEvents.WithLabelValues(method).Add(float64(len(table)))

	if req.RecordingID == "" {
		c.JSON(http.StatusOK, detectResponse{Method: method, Events: table})
		return
	}

	records, err := events.NewRecords(req.RecordingID, table, time.Now().UTC())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if err := h.store.Append(c.Request.Context(), records); err != nil {
		writeDomainError(c, err)
		return
	}
	h.logger.Info("stored detected events",
		zap.String("method", method),
		zap.String("recording_id", req.RecordingID),
		zap.Int("events", len(records)),
	)

	c.JSON(http.StatusCreated, detectResponse{Method: method, Events: table, Records: records})
}
