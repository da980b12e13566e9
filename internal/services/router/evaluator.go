package router

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
)

// MaxRoutesPerEvent caps the fan-out for a single pivot event. Buckets are
// ordered best liquidity first, so the tail carries little signal.
const MaxRoutesPerEvent = 128

// evalCounter for sampling the duration histogram (1/64 events)
var evalCounter atomic.Uint64

// Evaluator turns pivot events into ranked simulated routes. It is
// stateless between events; all state lives in the catalog and the cache.
type Evaluator struct {
	catalog *Catalog
	sim     *Simulator

	workers     int
	deadline    time.Duration
	minProfitBp int64
	refine      bool
}

func NewEvaluator(catalog *Catalog, sim *Simulator, workers int, deadline time.Duration, minProfitBp int64, refine bool) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{
		catalog:     catalog,
		sim:         sim,
		workers:     workers,
		deadline:    deadline,
		minProfitBp: minProfitBp,
		refine:      refine,
	}
}

// EvaluateEvent simulates every catalog route that both touches the pivot
// token and crosses the event's pool, and returns the best profitable
// result, or nil when nothing clears the profit floor. The second return is
// the number of candidates considered.
func (e *Evaluator) EvaluateEvent(ev *domain.PoolEvent, pivot domain.Pivot) (*domain.SimulatedRoute, int) {
	sample := evalCounter.Add(1)&0x3F == 0
	var start time.Time
	if sample {
		start = time.Now()
	}
	deadlineAt := time.Now().Add(e.deadline)

	pivotID, ok := e.sim.registry.GetID(pivot.Token)
	if !ok {
		metrics.Evaluations.WithLabelValues("no_token").Inc()
		return nil, 0
	}

	snap := e.catalog.Snapshot()
	bucket := snap.ByToken[pivotID]
	candidates := make([]domain.RouteID, 0, len(bucket))
	for _, id := range bucket {
		if snap.Routes[id].ContainsPool(ev.Pool) {
			candidates = append(candidates, id)
			if len(candidates) == MaxRoutesPerEvent {
				break
			}
		}
	}
	if len(candidates) == 0 {
		metrics.Evaluations.WithLabelValues("no_route").Inc()
		return nil, 0
	}

	results := make([]*domain.SimulatedRoute, len(candidates))

	// Sequential for tiny fan-outs, bounded goroutines otherwise
	if len(candidates) <= 2 {
		for i, id := range candidates {
			results[i] = e.simulateWithDeadline(snap, id, pivotID, pivot.Amount, deadlineAt)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, e.workers)
		for i, id := range candidates {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, routeID domain.RouteID) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = e.simulateWithDeadline(snap, routeID, pivotID, pivot.Amount, deadlineAt)
			}(i, id)
		}
		wg.Wait()
	}

	best := e.selectBest(results)

	if e.refine && best != nil {
		if refined := e.refineInput(snap, best, pivotID, pivot.Amount, deadlineAt); refined != nil {
			best = refined
		}
	}

	metrics.RoutesSimulated.Observe(float64(len(candidates)))
	if sample {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}
	if best == nil {
		metrics.Evaluations.WithLabelValues("unprofitable").Inc()
	} else {
		metrics.Evaluations.WithLabelValues("profitable").Inc()
	}
	return best, len(candidates)
}

func (e *Evaluator) simulateWithDeadline(snap *CatalogSnapshot, id domain.RouteID, pivot domain.TokenID, amount *uint256.Int, deadlineAt time.Time) *domain.SimulatedRoute {
	if time.Now().After(deadlineAt) {
		metrics.DeadlineSkips.Inc()
		return nil
	}
	result, err := e.sim.SimulateRoute(id, &snap.Routes[id], pivot, amount)
	if err != nil {
		return nil
	}
	return result
}

// selectBest picks the winner: highest profit_bp, ties broken by absolute
// profit, then by lower route id. Results below the profit floor lose.
func (e *Evaluator) selectBest(results []*domain.SimulatedRoute) *domain.SimulatedRoute {
	var best *domain.SimulatedRoute
	for _, res := range results {
		if res == nil || res.Loss || res.Profit.IsZero() {
			continue
		}
		if res.ProfitBp < e.minProfitBp {
			continue
		}
		if best == nil {
			best = res
			continue
		}
		switch {
		case res.ProfitBp > best.ProfitBp:
			best = res
		case res.ProfitBp == best.ProfitBp && res.Profit.Cmp(best.Profit) > 0:
			best = res
		case res.ProfitBp == best.ProfitBp && res.Profit.Cmp(best.Profit) == 0 && res.Route < best.Route:
			best = res
		}
	}
	return best
}
