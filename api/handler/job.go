package handler

import (
	"procurement-radar/api/response"

	"github.com/gin-gonic/gin"
)

// RunIngest POST /jobs/ingest
func (h *Handler) RunIngest(c *gin.Context) {
	rep, err := h.pipeline.RunOnce(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rep)
}

type cleanupRequest struct {
	GraceDays *int `json:"grace_days"`
}

// RunCleanup POST /jobs/cleanup, grace days default to the configured value.
func (h *Handler) RunCleanup(c *gin.Context) {
	var req cleanupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.FailCode(c, response.CodeInvalid, "некорректный параметр: "+err.Error())
			return
		}
	}
	grace := h.graceDays
	if req.GraceDays != nil {
		grace = *req.GraceDays
	}
	n, err := h.cleanup.Cleanup(c.Request.Context(), grace)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": n, "grace_days": grace})
}
