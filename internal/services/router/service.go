package router

import (
	"errors"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services"
	"github.com/hxuan190/arb-engine/internal/services/market"
)

const ROUTER_SERVICE = "router-service"

// opportunitySendWait bounds how long an emit may block the event path when
// the downstream consumer lags. Past it the opportunity is dropped.
const opportunitySendWait = 500 * time.Microsecond

// Service wires the token registry, route catalog, simulator and evaluator
// together and owns the bounded opportunity egress channel.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	conf      *config.EngineConfig
	marketSvc *market.Service

	registry  *TokenRegistry
	catalog   *Catalog
	sim       *Simulator
	evaluator *Evaluator

	opportunities chan domain.Opportunity
}

func (svc *Service) ID() string {
	return ROUTER_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	if svc.conf == nil {
		return errors.New("invalid engine config")
	}
	svc.marketSvc = c.Instance(market.ServiceName).(*market.Service)

	svc.registry = NewTokenRegistry()
	svc.opportunities = make(chan domain.Opportunity, svc.conf.OpportunityBuffer)

	registry := svc.marketSvc.Registry()
	registry.RegisterQuoter(NewV2Quoter())
	registry.RegisterQuoter(NewV3Quoter())

	return nil
}

// Start builds the catalog. The market service has preloaded the universe
// and the safety table by the time the container starts this service.
func (svc *Service) Start() error {
	svc.catalog = NewCatalog(svc.registry, svc.marketSvc.Safety())
	svc.sim = NewSimulator(
		svc.marketSvc.States(),
		svc.marketSvc.Safety(),
		svc.registry,
		svc.marketSvc.Registry().GetQuote,
		svc.conf.SlippageBp,
	)
	svc.evaluator = NewEvaluator(
		svc.catalog,
		svc.sim,
		svc.conf.Workers(),
		svc.conf.EvalDeadline,
		svc.conf.MinProfitBp,
		svc.conf.RefineInput,
	)

	svc.RebuildCatalog()
	svc.logger.Info().
		Int("routes", svc.catalog.Len()).
		Int("tokens", svc.registry.Size()).
		Msg("route catalog built")
	return nil
}

func (svc *Service) Stop() error {
	svc.sim.Stop()
	close(svc.opportunities)
	return nil
}

// RebuildCatalog re-enumerates routes from the current cache contents.
func (svc *Service) RebuildCatalog() {
	bases := make([]gethcommon.Address, 0, len(svc.conf.BaseTokens))
	for _, bt := range svc.conf.BaseTokens {
		bases = append(bases, bt.Address)
	}
	svc.catalog.Build(svc.marketSvc.States(), bases, svc.conf.MaxHops)
}

// Evaluate runs a pivot event through the evaluator and emits the winning
// opportunity, if any, on the egress channel. Never blocks ingress for more
// than opportunitySendWait.
func (svc *Service) Evaluate(ev *domain.PoolEvent, pivot domain.Pivot) {
	best, _ := svc.evaluator.EvaluateEvent(ev, pivot)
	if best == nil {
		return
	}

	route := svc.catalog.Route(best.Route)
	pools := make([]string, 0, len(route.Pools))
	for _, p := range route.Pools {
		pools = append(pools, p.Hex())
	}

	now := time.Now()
	opp := domain.Opportunity{
		Route:      best.Route,
		Base:       svc.registry.GetAddress(route.Base()),
		PivotToken: best.PivotToken,
		Pools:      pools,
		AmountIn:   best.Amounts[0],
		AmountOut:  best.Amounts[len(best.Amounts)-1],
		Profit:     best.Profit,
		ProfitBp:   best.ProfitBp,
		TriggerTx:  ev.Tx,
		LatencyUs:  (now.UnixNano() - ev.ReceivedAt) / int64(time.Microsecond),
		DetectedAt: now.UnixNano(),
	}

	select {
	case svc.opportunities <- opp:
		metrics.Opportunities.Inc()
		metrics.OpportunityProfitBp.Observe(float64(opp.ProfitBp))
		metrics.DetectionLatency.Observe(float64(opp.LatencyUs) / 1e6)
	case <-time.After(opportunitySendWait):
		metrics.OpportunitiesDropped.Inc()
		svc.logger.Warn().Uint32("route", uint32(opp.Route)).Msg("opportunity dropped, egress channel full")
	}
}

// Opportunities exposes the egress channel to the downstream consumer.
func (svc *Service) Opportunities() <-chan domain.Opportunity {
	return svc.opportunities
}

func (svc *Service) Catalog() *Catalog {
	return svc.catalog
}

func (svc *Service) Registry() *TokenRegistry {
	return svc.registry
}

// GetStats returns route and token counts.
func (svc *Service) GetStats() (int, int) {
	return svc.catalog.Len(), svc.registry.Size()
}
