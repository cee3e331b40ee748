package handler

import (
	"procurement-radar/api/response"
	"procurement-radar/types"

	"github.com/gin-gonic/gin"
)

// CreateProposal POST /proposals
func (h *Handler) CreateProposal(c *gin.Context) {
	var req types.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: "+err.Error())
		return
	}
	p, err := h.proposals.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

// AnalyzeProposal POST /proposals/:id/analyze
func (h *Handler) AnalyzeProposal(c *gin.Context) {
	p, err := h.proposals.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

// ListProposals GET /lots/:number/proposals, best first.
func (h *Handler) ListProposals(c *gin.Context) {
	ranked, err := h.proposals.ListRanked(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, ranked)
}
