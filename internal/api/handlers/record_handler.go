package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/voiceintake/internal/models"
	"github.com/yoockh/voiceintake/internal/services"
)

type RecordHandler struct {
	records services.RecordService
}

func NewRecordHandler(records services.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

type ListRecordsResponse struct {
	Records []models.VoiceRecord `json:"records"`
}

func (h *RecordHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c, 20, 100)
	if !ok {
		return
	}
	rows, err := h.records.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []models.VoiceRecord{}
	}
	c.JSON(http.StatusOK, ListRecordsResponse{Records: rows})
}

// Get accepts either a record id or, with ?by=session, a session id.
func (h *RecordHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var (
		rec *models.VoiceRecord
		err error
	)
	if c.Query("by") == "session" {
		rec, err = h.records.GetBySession(c.Request.Context(), id)
	} else {
		rec, err = h.records.Get(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
