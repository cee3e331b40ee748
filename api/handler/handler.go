package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"procurement-radar/api/response"
	"procurement-radar/service"
	"procurement-radar/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LotAPI is what the lot endpoints call.
type LotAPI interface {
	List(ctx context.Context, q service.ListQuery) ([]types.Lot, error)
	Search(ctx context.Context, query string) (*service.SearchResult, error)
	SetReviewStatus(ctx context.Context, lotNumber string, status types.ReviewStatus) (*types.Lot, error)
	Import(ctx context.Context, raws []types.RawLot, defaultCustomer string) (*service.RunReport, error)
	Extract(ctx context.Context, content string) (*service.RunReport, error)
}

type PreferenceAPI interface {
	Get(ctx context.Context, subscriberID int64) (*types.Preference, error)
	Update(ctx context.Context, subscriberID int64, upd types.PreferenceUpdate) (*types.Preference, error)
	SetNotify(ctx context.Context, subscriberID int64, enabled bool) (*types.Preference, error)
}

type ProposalAPI interface {
	Create(ctx context.Context, req types.CreateProposalRequest) (*types.Proposal, error)
	Analyze(ctx context.Context, id string) (*types.Proposal, error)
	ListRanked(ctx context.Context, lotNumber string) ([]types.Proposal, error)
}

type PipelineAPI interface {
	RunOnce(ctx context.Context) (*service.RunReport, error)
}

type CleanupAPI interface {
	Cleanup(ctx context.Context, graceDays int) (int64, error)
}

// Handler serves every /api/v1 endpoint.
type Handler struct {
	lots      LotAPI
	prefs     PreferenceAPI
	proposals ProposalAPI
	pipeline  PipelineAPI
	cleanup   CleanupAPI
	graceDays int
	log       *zap.Logger
}

func NewHandler(lots LotAPI, prefs PreferenceAPI, proposals ProposalAPI, pipeline PipelineAPI, cleanup CleanupAPI, graceDays int, log *zap.Logger) *Handler {
	return &Handler{
		lots:      lots,
		prefs:     prefs,
		proposals: proposals,
		pipeline:  pipeline,
		cleanup:   cleanup,
		graceDays: graceDays,
		log:       log,
	}
}

// fail maps service errors onto the failure envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.FailCode(c, response.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrInvalid):
		response.FailCode(c, response.CodeInvalid, err.Error())
	case errors.Is(err, service.ErrBusy):
		response.FailCode(c, response.CodeBusy, err.Error())
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Fail(c, err.Error())
	}
}

// ListLots GET /lots
func (h *Handler) ListLots(c *gin.Context) {
	q := service.ListQuery{
		Q:        c.Query("q"),
		Customer: c.Query("customer"),
	}
	var err error
	if q.BudgetMin, err = optDecimal(c.Query("budget_min")); err != nil {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: budget_min")
		return
	}
	if q.BudgetMax, err = optDecimal(c.Query("budget_max")); err != nil {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: budget_max")
		return
	}
	if s := c.Query("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 0 {
			response.FailCode(c, response.CodeInvalid, "некорректный параметр: limit")
			return
		}
	}

	lots, err := h.lots.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, lots)
}

// SearchLots POST /lots/search
func (h *Handler) SearchLots(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "не указан параметр query")
		return
	}
	result, err := h.lots.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

type importRequest struct {
	Customer string         `json:"customer"`
	Lots     []types.RawLot `json:"lots" binding:"required"`
}

// ImportLots POST /lots/import
func (h *Handler) ImportLots(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "некорректный параметр: "+err.Error())
		return
	}
	rep, err := h.lots.Import(c.Request.Context(), req.Lots, req.Customer)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rep)
}

type extractRequest struct {
	Content string `json:"content" binding:"required"`
}

// ExtractLot POST /lots/extract
func (h *Handler) ExtractLot(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "не указан параметр content")
		return
	}
	rep, err := h.lots.Extract(c.Request.Context(), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rep)
}

type reviewRequest struct {
	Status types.ReviewStatus `json:"status" binding:"required"`
}

// SetReview PUT /lots/:number/review
func (h *Handler) SetReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailCode(c, response.CodeInvalid, "не указан параметр status")
		return
	}
	lot, err := h.lots.SetReviewStatus(c.Request.Context(), c.Param("number"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, lot)
}

func optDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
