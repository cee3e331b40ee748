package handler

import (
	"strconv"

	"procurement-radar/api/response"
	"procurement-radar/types"

	"github.com/gin-gonic/gin"
)

func subscriberID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: id")
		return 0, false
	}
	return id, true
}

// GetPreference GET /subscribers/:id/preference
func (h *Handler) GetPreference(c *gin.Context) {
	id, ok := subscriberID(c)
	if !ok {
		return
	}
	pref, err := h.prefs.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, pref)
}

// UpdatePreference PUT /subscribers/:id/preference
func (h *Handler) UpdatePreference(c *gin.Context) {
	id, ok := subscriberID(c)
	if !ok {
		return
	}
	var upd types.PreferenceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: "+err.Error())
		return
	}
	pref, err := h.prefs.Update(c.Request.Context(), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, pref)
}

type notifyRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetNotify PUT /subscribers/:id/notify
func (h *Handler) SetNotify(c *gin.Context) {
	id, ok := subscriberID(c)
	if !ok {
		return
	}
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "не указан параметр enabled")
		return
	}
	pref, err := h.prefs.SetNotify(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, pref)
}
