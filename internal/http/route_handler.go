package http

import (
	"strconv"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/http/httputil"
	"github.com/hxuan190/arb-engine/internal/services/router"
)

type RouteHandler struct {
	routerSvc *router.Service
}

func NewRouteHandler(routerSvc *router.Service) *RouteHandler {
	return &RouteHandler{routerSvc: routerSvc}
}

func (h *RouteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/:id", h.getRoute)
	pub.GET("/by-pool/:address", h.routesByPool)
	admin.POST("/rebuild", h.rebuild)
}

func (h *RouteHandler) Root() string {
	return "/routes"
}

type RouteStatsResponse struct {
	// Cycles currently enumerated in the catalog
	RouteCount int `json:"route_count" example:"2489"`

	// Distinct tokens the catalog has interned
	TokenCount int `json:"token_count" example:"312"`
}

func (h *RouteHandler) getStats(c *gin.Context) {
	routes, tokens := h.routerSvc.GetStats()
	httputil.Success(c, RouteStatsResponse{
		RouteCount: routes,
		TokenCount: tokens,
	})
}

type RouteResponse struct {
	ID uint32 `json:"id" example:"17"`

	// Token addresses along the cycle; first and last are the base token
	Hops []string `json:"hops"`

	// Pool addresses between consecutive hops
	Pools []string `json:"pools"`

	Kinds []string `json:"kinds" example:"V2,V3"`
}

func (h *RouteHandler) routeResponse(id domain.RouteID, route *domain.RoutePath) RouteResponse {
	registry := h.routerSvc.Registry()

	hops := make([]string, 0, len(route.Hops))
	for _, t := range route.Hops {
		hops = append(hops, registry.GetAddress(t).Hex())
	}
	pools := make([]string, 0, len(route.Pools))
	for _, p := range route.Pools {
		pools = append(pools, p.Hex())
	}
	kinds := make([]string, 0, len(route.Kinds))
	for _, k := range route.Kinds {
		kinds = append(kinds, k.String())
	}

	return RouteResponse{ID: uint32(id), Hops: hops, Pools: pools, Kinds: kinds}
}

func (h *RouteHandler) getRoute(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httputil.BadRequest(c, "malformed route id")
		return
	}
	route := h.routerSvc.Catalog().Route(domain.RouteID(id))
	if route == nil {
		httputil.NotFound(c, "route not found")
		return
	}
	httputil.Success(c, h.routeResponse(domain.RouteID(id), route))
}

type RouteListResponse struct {
	Routes []RouteResponse `json:"routes"`
	Total  int             `json:"total" example:"14"`
}

// routesByPool lists every catalog route crossing a pool, the same set the
// evaluator fans out over when that pool fires an event.
func (h *RouteHandler) routesByPool(c *gin.Context) {
	address := c.Param("address")
	if !gethcommon.IsHexAddress(address) {
		httputil.BadRequest(c, "malformed pool address")
		return
	}

	catalog := h.routerSvc.Catalog()
	ids := catalog.RoutesForPool(gethcommon.HexToAddress(address))

	routes := make([]RouteResponse, 0, len(ids))
	for _, id := range ids {
		if route := catalog.Route(id); route != nil {
			routes = append(routes, h.routeResponse(id, route))
		}
	}
	httputil.Success(c, RouteListResponse{Routes: routes, Total: len(routes)})
}

func (h *RouteHandler) rebuild(c *gin.Context) {
	h.routerSvc.RebuildCatalog()
	routes, tokens := h.routerSvc.GetStats()
	httputil.Success(c, RouteStatsResponse{RouteCount: routes, TokenCount: tokens})
}
