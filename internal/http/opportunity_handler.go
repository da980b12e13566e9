package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/arb-engine/internal/http/httputil"
	"github.com/hxuan190/arb-engine/internal/services/sink"
)

type OpportunityHandler struct {
	sinkSvc *sink.Service
}

func NewOpportunityHandler(sinkSvc *sink.Service) *OpportunityHandler {
	return &OpportunityHandler{sinkSvc: sinkSvc}
}

func (h *OpportunityHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/recent", h.recent)
	pub.GET("/stats", h.getStats)
}

func (h *OpportunityHandler) Root() string {
	return "/opportunities"
}

type OpportunityStatsResponse struct {
	// Lifetime count of recorded opportunities
	Total uint64 `json:"total" example:"531"`
}

func (h *OpportunityHandler) getStats(c *gin.Context) {
	httputil.Success(c, OpportunityStatsResponse{Total: h.sinkSvc.Total()})
}

func (h *OpportunityHandler) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 {
		limit = 50
	}
	httputil.Success(c, h.sinkSvc.Recent(limit))
}
