package router

import (
	"procurement-radar/api/handler"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	api := r.Group("/api/v1")
	{
		lots := api.Group("/lots")
		{
			lots.GET("", h.ListLots)
			lots.POST("/search", h.SearchLots)
			lots.POST("/import", h.ImportLots)
			lots.POST("/extract", h.ExtractLot)
			lots.PUT("/:number/review", h.SetReview)
			lots.GET("/:number/proposals", h.ListProposals)
		}
		subscribers := api.Group("/subscribers")
		{
			subscribers.GET("/:id/preference", h.GetPreference)
			subscribers.PUT("/:id/preference", h.UpdatePreference)
			subscribers.PUT("/:id/notify", h.SetNotify)
		}
		proposals := api.Group("/proposals")
		{
			proposals.POST("", h.CreateProposal)
			proposals.POST("/:id/analyze", h.AnalyzeProposal)
		}
		jobs := api.Group("/jobs")
		{
			jobs.POST("/ingest", h.RunIngest)
			jobs.POST("/cleanup", h.RunCleanup)
		}
	}
}
