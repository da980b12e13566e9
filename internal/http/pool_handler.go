package http

import (
	"sort"
	"strconv"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/arb-engine/internal/http/httputil"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

type PoolHandler struct {
	marketSvc *market.Service
}

func NewPoolHandler(marketSvc *market.Service) *PoolHandler {
	return &PoolHandler{marketSvc: marketSvc}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/stats", h.getStats)
	pub.GET("/list", h.listPools)
	pub.GET("/:address", h.getPool)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

type PoolStatsResponse struct {
	// Pools currently held in the state cache
	PoolCount int `json:"pool_count" example:"1247"`

	// Pools with complete state, eligible for quoting
	ReadyCount int `json:"ready_count" example:"1198"`
}

func (h *PoolHandler) getStats(c *gin.Context) {
	poolCount, readyCount := h.marketSvc.GetStats()
	httputil.Success(c, PoolStatsResponse{
		PoolCount:  poolCount,
		ReadyCount: readyCount,
	})
}

type PoolInfo struct {
	Address string `json:"address" example:"0x16b9a82891338f9ba80e2d6970fdda79d1eb0dae"`

	// "V2" or "V3"
	Kind string `json:"kind" example:"V2"`

	Token0 string `json:"token0" example:"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"`
	Token1 string `json:"token1" example:"0xe9e7cea3dedca5984780bafc599bd69add087d56"`

	Ready bool `json:"ready" example:"true"`
}

type PoolListResponse struct {
	Pools []PoolInfo `json:"pools"`
	Total int        `json:"total" example:"1247"`
	Page  int        `json:"page" example:"1"`
	Limit int        `json:"limit" example:"100"`
	Pages int        `json:"pages" example:"13"`
}

func (h *PoolHandler) listPools(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	all := h.marketSvc.States().GetAll()
	// Stable order across requests; the shard map iterates randomly.
	sort.Slice(all, func(i, j int) bool {
		return all[i].Address.Hex() < all[j].Address.Hex()
	})
	total := len(all)

	pages := (total + limit - 1) / limit
	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	pools := make([]PoolInfo, 0, end-offset)
	for _, st := range all[offset:end] {
		pools = append(pools, PoolInfo{
			Address: st.Address.Hex(),
			Kind:    st.Kind.String(),
			Token0:  st.Token0.Hex(),
			Token1:  st.Token1.Hex(),
			Ready:   st.IsReady(),
		})
	}

	httputil.Success(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

type PoolDetailResponse struct {
	Address string `json:"address" example:"0x16b9a82891338f9ba80e2d6970fdda79d1eb0dae"`
	Kind    string `json:"kind" example:"V3"`

	Token0 string `json:"token0" example:"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"`
	Token1 string `json:"token1" example:"0xe9e7cea3dedca5984780bafc599bd69add087d56"`

	// V2 fields, zero for V3 pools
	Reserve0 string `json:"reserve0,omitempty" example:"1234567890123"`
	Reserve1 string `json:"reserve1,omitempty" example:"9876543210987"`
	FeeNum   uint64 `json:"fee_num,omitempty" example:"9975"`
	FeeDen   uint64 `json:"fee_den,omitempty" example:"10000"`

	// V3 fields, zero for V2 pools
	SqrtPriceX96 string `json:"sqrt_price_x96,omitempty" example:"79228162514264337593543950336"`
	Liquidity    string `json:"liquidity,omitempty" example:"58274610236012"`
	Tick         int32  `json:"tick,omitempty" example:"-2031"`
	FeePPM       uint32 `json:"fee_ppm,omitempty" example:"500"`

	Ready bool `json:"ready" example:"true"`

	// Unix nanoseconds of the last feed update, 0 if never touched
	LastUpdated int64 `json:"last_updated" example:"1724580000000000000"`
}

func (h *PoolHandler) getPool(c *gin.Context) {
	address := c.Param("address")
	if !gethcommon.IsHexAddress(address) {
		httputil.BadRequest(c, "malformed pool address")
		return
	}

	st, ok := h.marketSvc.States().Get(gethcommon.HexToAddress(address))
	if !ok {
		httputil.NotFound(c, "pool not found")
		return
	}

	resp := PoolDetailResponse{
		Address:     st.Address.Hex(),
		Kind:        st.Kind.String(),
		Token0:      st.Token0.Hex(),
		Token1:      st.Token1.Hex(),
		Ready:       st.IsReady(),
		LastUpdated: st.LastUpdated,
	}
	if st.Reserve0 != nil {
		resp.Reserve0 = st.Reserve0.Dec()
	}
	if st.Reserve1 != nil {
		resp.Reserve1 = st.Reserve1.Dec()
	}
	resp.FeeNum = st.FeeNum
	resp.FeeDen = st.FeeDen
	if st.SqrtPriceX96 != nil {
		resp.SqrtPriceX96 = st.SqrtPriceX96.Dec()
	}
	if st.Liquidity != nil {
		resp.Liquidity = st.Liquidity.Dec()
	}
	resp.Tick = st.Tick
	resp.FeePPM = st.FeePPM

	httputil.Success(c, resp)
}
