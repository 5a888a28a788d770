package httpserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/pymovements/gazeseg/internal/events"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxSegmentationBodyBytes int64 = 32 << 20

type segmentationHandler struct {
	metrics *metrics
	logger  *zap.Logger
}

type encodeRequest struct {
	Events       []map[string]any    `json:"events"`
	NumSamples   *int                `json:"num_samples" binding:"required"`
	OnsetColumn  string              `json:"onset_column"`
	OffsetColumn string              `json:"offset_column"`
	PadBefore    int                 `json:"pad_before"`
	PadAfter     int                 `json:"pad_after"`
	Name         string              `json:"name"`
	Trials       events.TrialColumns `json:"trials"`
}

type encodeResponse struct {
	Segmentation events.Segmentation `json:"segmentation"`
	Warnings     []events.Warning    `json:"warnings"`
}

type decodeRequest struct {
	Segmentation json.RawMessage     `json:"segmentation" binding:"required"`
	Name         string              `json:"name"`
	Time         []float64           `json:"time"`
	Trials       events.TrialColumns `json:"trials"`
}

type timeRatioRequest struct {
	Events       []map[string]any    `json:"events"`
	Time         []float64           `json:"time"`
	Name         string              `json:"name" binding:"required"`
	SamplingRate float64             `json:"sampling_rate"`
	Trials       events.TrialColumns `json:"trials"`
}

func newSegmentationHandler(metrics *metrics, logger *zap.Logger) segmentationHandler {
	return segmentationHandler{metrics: metrics, logger: logger}
}

func (h segmentationHandler) encode(c *gin.Context) {
	var req encodeRequest
	if !bindLimited(c, &req) {
		return
	}

	table, err := events.FromRecords(req.Events, req.OnsetColumn, req.OffsetColumn)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	segmentation, warnings, err := events.EventsToSegmentation(table, *req.NumSamples, events.SegmentationOptions{
		PadBefore: req.PadBefore,
		PadAfter:  req.PadAfter,
		Name:      req.Name,
		Trials:    req.Trials,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	for _, warning := range warnings {
		h.metrics.overlapWarnings.Inc()
		h.logger.Warn(warning.Message,
			zap.Int("onset", warning.Onset),
			zap.Int("offset", warning.Offset),
			zap.String("trial", warning.Trial),
		)
	}
	if warnings == nil {
		warnings = []events.Warning{}
	}

	c.JSON(http.StatusOK, encodeResponse{Segmentation: segmentation, Warnings: warnings})
}

func (h segmentationHandler) decode(c *gin.Context) {
	var req decodeRequest
	if !bindLimited(c, &req) {
		return
	}

	values, err := events.ParseSegmentation(req.Segmentation)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	table, err := events.SegmentationToEvents(values, req.Name, events.DecodeOptions{
		Time:   req.Time,
		Trials: req.Trials,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": table})
}

func (h segmentationHandler) timeRatio(c *gin.Context) {
	var req timeRatioRequest
	if !bindLimited(c, &req) {
		return
	}

	table, err := events.FromRecords(req.Events, "", "")
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if len(req.Trials) > 0 {
		ratios, err := events.EventTimeRatioByTrial(table, req.Time, req.Trials, req.Name, req.SamplingRate)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ratios": ratios})
		return
	}
	ratio, err := events.EventTimeRatio(table, req.Time, req.Name, req.SamplingRate)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if math.IsNaN(ratio) {
		c.JSON(http.StatusOK, gin.H{"ratio": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratio": ratio})
}

func bindLimited(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSegmentationBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
