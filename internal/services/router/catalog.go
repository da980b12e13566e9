package router

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

// CatalogSnapshot is an immutable view of the route universe. The evaluator
// reads whole snapshots through an atomic.Value, so rebuilds never block the
// hot path.
type CatalogSnapshot struct {
	Routes  []domain.RoutePath
	ByToken map[domain.TokenID][]domain.RouteID
	ByPool  map[common.Address][]domain.RouteID

	// proxy[i] is the liquidity proxy the index buckets were ordered by:
	// the weakest pool bounds what the route can carry.
	proxy []*uint256.Int
}

// Catalog owns the enumerated cyclic routes and the inverted indexes over
// them. Mutations go through a copy-on-write rebuild guarded by mu.
type Catalog struct {
	mu   sync.Mutex
	snap atomic.Value // *CatalogSnapshot

	registry *TokenRegistry
	safety   *market.SafetyTable
}

func NewCatalog(registry *TokenRegistry, safety *market.SafetyTable) *Catalog {
	c := &Catalog{registry: registry, safety: safety}
	c.snap.Store(&CatalogSnapshot{
		ByToken: make(map[domain.TokenID][]domain.RouteID),
		ByPool:  make(map[common.Address][]domain.RouteID),
	})
	return c
}

func (c *Catalog) Snapshot() *CatalogSnapshot {
	return c.snap.Load().(*CatalogSnapshot)
}

func (c *Catalog) Len() int {
	return len(c.Snapshot().Routes)
}

func (c *Catalog) Route(id domain.RouteID) *domain.RoutePath {
	snap := c.Snapshot()
	if int(id) >= len(snap.Routes) {
		return nil
	}
	return &snap.Routes[id]
}

// RoutesForToken returns the bucket for a token, best liquidity first.
func (c *Catalog) RoutesForToken(t domain.TokenID) []domain.RouteID {
	return c.Snapshot().ByToken[t]
}

// RoutesForPool returns the bucket for a pool, best liquidity first.
func (c *Catalog) RoutesForPool(pool common.Address) []domain.RouteID {
	return c.Snapshot().ByPool[pool]
}

// Build enumerates all cyclic routes from the base tokens over the ready
// pools in the cache and installs a fresh snapshot. Intermediate hops are
// distinct, pools are not reused within a route, and any route touching a
// token that failed the safety screen is dropped.
func (c *Catalog) Build(states *market.ShardedStateMap, baseTokens []common.Address, maxHops int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	adjacency := make(map[common.Address][]*domain.PoolState)
	states.Range(func(_ common.Address, state *domain.PoolState) bool {
		if !state.IsReady() {
			return true
		}
		c.registry.GetOrCreate(state.Token0)
		c.registry.GetOrCreate(state.Token1)
		adjacency[state.Token0] = append(adjacency[state.Token0], state)
		adjacency[state.Token1] = append(adjacency[state.Token1], state)
		return true
	})

	next := &CatalogSnapshot{
		ByToken: make(map[domain.TokenID][]domain.RouteID),
		ByPool:  make(map[common.Address][]domain.RouteID),
	}

	walker := &routeWalker{
		adjacency: adjacency,
		maxHops:   maxHops,
		catalog:   c,
		snap:      next,
	}
	for _, base := range baseTokens {
		walker.base = base
		walker.tokens = walker.tokens[:0]
		walker.tokens = append(walker.tokens, base)
		walker.pools = walker.pools[:0]
		walker.walk(base)
	}

	c.finishSnapshot(next)
	c.snap.Store(next)

	metrics.RouteCount.Set(float64(len(next.Routes)))
	metrics.TokenCount.Set(float64(c.registry.Size()))
	metrics.CatalogRebuilds.Inc()
}

// AddRoute inserts a hand-built route, applying the same safety screen as
// enumeration. Used for curated routes and tests.
func (c *Catalog) AddRoute(route domain.RoutePath, states *market.ShardedStateMap) (domain.RouteID, error) {
	if !route.Valid() {
		return 0, ErrInvalidPool
	}
	for _, h := range route.Hops {
		if !c.safety.Tradable(c.registry.GetAddress(h)) {
			metrics.UnsafeTokenRoutesSkipped.Inc()
			return 0, ErrUnsafeToken
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.Snapshot()
	next := &CatalogSnapshot{
		Routes:  append(append([]domain.RoutePath(nil), prev.Routes...), route),
		ByToken: make(map[domain.TokenID][]domain.RouteID),
		ByPool:  make(map[common.Address][]domain.RouteID),
	}
	id := domain.RouteID(len(next.Routes) - 1)
	next.proxy = append(append([]*uint256.Int(nil), prev.proxy...), routeProxy(&route, states))
	for i := range next.Routes {
		indexRoute(next, domain.RouteID(i))
	}
	sortBuckets(next)
	c.snap.Store(next)

	metrics.RouteCount.Set(float64(len(next.Routes)))
	return id, nil
}

type routeWalker struct {
	adjacency map[common.Address][]*domain.PoolState
	maxHops   int
	catalog   *Catalog
	snap      *CatalogSnapshot
	base      common.Address

	tokens []common.Address
	pools  []*domain.PoolState
}

func (w *routeWalker) walk(current common.Address) {
	depth := len(w.pools)
	for _, pool := range w.adjacency[current] {
		if w.usedPool(pool.Address) {
			continue
		}
		nextToken := pool.Other(current)
		if nextToken == w.base {
			if depth+1 >= 2 {
				w.emit(pool)
			}
			continue
		}
		if depth+2 > w.maxHops {
			// The next hop still has to get back to base
			continue
		}
		if w.visited(nextToken) {
			continue
		}
		w.tokens = append(w.tokens, nextToken)
		w.pools = append(w.pools, pool)
		w.walk(nextToken)
		w.tokens = w.tokens[:len(w.tokens)-1]
		w.pools = w.pools[:len(w.pools)-1]
	}
}

func (w *routeWalker) usedPool(addr common.Address) bool {
	for _, p := range w.pools {
		if p.Address == addr {
			return true
		}
	}
	return false
}

func (w *routeWalker) visited(token common.Address) bool {
	for _, t := range w.tokens {
		if t == token {
			return true
		}
	}
	return false
}

func (w *routeWalker) emit(closing *domain.PoolState) {
	n := len(w.pools) + 1
	route := domain.RoutePath{
		Hops:  make([]domain.TokenID, 0, n+1),
		Pools: make([]common.Address, 0, n),
		Kinds: make([]domain.PoolKind, 0, n),
	}
	for _, t := range w.tokens {
		if !w.catalog.safety.Tradable(t) {
			metrics.UnsafeTokenRoutesSkipped.Inc()
			return
		}
		route.Hops = append(route.Hops, w.catalog.registry.GetOrCreate(t))
	}
	route.Hops = append(route.Hops, route.Hops[0])
	for _, p := range w.pools {
		route.Pools = append(route.Pools, p.Address)
		route.Kinds = append(route.Kinds, p.Kind)
	}
	route.Pools = append(route.Pools, closing.Address)
	route.Kinds = append(route.Kinds, closing.Kind)

	w.snap.Routes = append(w.snap.Routes, route)
	w.snap.proxy = append(w.snap.proxy, routeProxyFromStates(append(append([]*domain.PoolState(nil), w.pools...), closing)))
}

func (c *Catalog) finishSnapshot(snap *CatalogSnapshot) {
	for i := range snap.Routes {
		indexRoute(snap, domain.RouteID(i))
	}
	sortBuckets(snap)
}

func indexRoute(snap *CatalogSnapshot, id domain.RouteID) {
	route := &snap.Routes[id]
	seen := make(map[domain.TokenID]struct{}, len(route.Hops))
	for _, h := range route.Hops {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		snap.ByToken[h] = append(snap.ByToken[h], id)
	}
	for _, p := range route.Pools {
		snap.ByPool[p] = appendUnique(snap.ByPool[p], id)
	}
}

func appendUnique(ids []domain.RouteID, id domain.RouteID) []domain.RouteID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func sortBuckets(snap *CatalogSnapshot) {
	less := func(a, b domain.RouteID) bool {
		cmp := snap.proxy[a].Cmp(snap.proxy[b])
		if cmp != 0 {
			return cmp > 0 // descending by proxy
		}
		return a < b
	}
	for _, bucket := range snap.ByToken {
		sort.Slice(bucket, func(i, j int) bool { return less(bucket[i], bucket[j]) })
	}
	for _, bucket := range snap.ByPool {
		sort.Slice(bucket, func(i, j int) bool { return less(bucket[i], bucket[j]) })
	}
}

func routeProxy(route *domain.RoutePath, states *market.ShardedStateMap) *uint256.Int {
	pools := make([]*domain.PoolState, 0, len(route.Pools))
	for _, addr := range route.Pools {
		if state, ok := states.Get(addr); ok {
			pools = append(pools, state)
		}
	}
	return routeProxyFromStates(pools)
}

func routeProxyFromStates(pools []*domain.PoolState) *uint256.Int {
	min := new(uint256.Int)
	for i, p := range pools {
		proxy := p.LiquidityProxy()
		if i == 0 || proxy.Cmp(min) < 0 {
			min = proxy
		}
	}
	return min
}

// SplitAroundPivot cuts a route at the first occurrence of the pivot token.
// The buy leg carries base to pivot, the sell leg pivot back to base; the
// pivot hop appears in both legs.
func SplitAroundPivot(route *domain.RoutePath, pivot domain.TokenID) (buy, sell domain.RouteLeg, pivotIdx int, err error) {
	n := len(route.Pools)
	pivotIdx = -1
	for k := 0; k <= n; k++ {
		if route.Hops[k] == pivot {
			pivotIdx = k
			break
		}
	}
	if pivotIdx < 0 {
		return domain.RouteLeg{}, domain.RouteLeg{}, -1, ErrPivotNotOnRoute
	}

	buy = domain.RouteLeg{
		Hops:  route.Hops[:pivotIdx+1],
		Pools: route.Pools[:pivotIdx],
		Kinds: route.Kinds[:pivotIdx],
	}
	sell = domain.RouteLeg{
		Hops:  route.Hops[pivotIdx:],
		Pools: route.Pools[pivotIdx:],
		Kinds: route.Kinds[pivotIdx:],
	}
	return buy, sell, pivotIdx, nil
}
