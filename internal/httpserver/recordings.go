package httpserver

import (
	"net/http"

	"github.com/pymovements/gazeseg/internal/events"

	"github.com/gin-gonic/gin"
)

type recordingsHandler struct {
	store events.Repository
}

type listEventsRequest struct {
	Name string `form:"name"`
}

func newRecordingsHandler(store events.Repository) recordingsHandler {
	return recordingsHandler{store: store}
}

func (h recordingsHandler) list(c *gin.Context) {
	var req listEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid query")
		return
	}

	records, err := h.store.ListByRecording(c.Request.Context(), c.Param("recording_id"), req.Name)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h recordingsHandler) get(c *gin.Context) {
	record, err := h.store.Get(c.Request.Context(), c.Param("recording_id"), c.Param("event_id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
