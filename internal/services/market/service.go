package market

import (
	"errors"
	"os"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services"
)

const ServiceName = "market-service"

// Service owns the pool-state cache, the quoter registry and the token
// safety table. The feed writes into it, the router reads from it.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	conf     *config.EngineConfig
	states   *ShardedStateMap
	registry *MarketRegistry
	safety   *SafetyTable
}

func (svc *Service) ID() string {
	return ServiceName
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	if svc.conf == nil {
		return errors.New("invalid engine config")
	}
	svc.states = NewShardedStateMap()
	svc.registry = NewDefaultMarketRegistry()
	svc.safety = NewSafetyTable()
	return nil
}

func (svc *Service) Start() error {
	if svc.conf.PoolsPath != "" {
		loaded, skipped, err := LoadUniverse(svc.conf.PoolsPath, svc.states)
		if err != nil {
			if os.IsNotExist(errors.Unwrap(err)) {
				svc.logger.Warn().Str("path", svc.conf.PoolsPath).Msg("universe file missing, starting with empty cache")
			} else {
				return err
			}
		}
		svc.logger.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("universe preloaded")
	}

	if svc.conf.TokenSafetyPath != "" {
		table, err := LoadSafetyTable(svc.conf.TokenSafetyPath)
		if err != nil {
			if os.IsNotExist(errors.Unwrap(err)) {
				svc.logger.Warn().Str("path", svc.conf.TokenSafetyPath).Msg("safety table missing, all tokens untradable")
			} else {
				return err
			}
		} else {
			svc.safety = table
		}
		svc.logger.Info().Int("tokens", svc.safety.Len()).Msg("token safety table loaded")
	}

	metrics.PoolCount.Set(float64(svc.states.Len()))
	metrics.ReadyPoolCount.Set(float64(svc.states.ReadyLen()))
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

func (svc *Service) States() *ShardedStateMap {
	return svc.states
}

func (svc *Service) Registry() *MarketRegistry {
	return svc.registry
}

func (svc *Service) Safety() *SafetyTable {
	return svc.safety
}

// GetStats returns pool count and ready pool count.
func (svc *Service) GetStats() (int, int) {
	return svc.states.Len(), svc.states.ReadyLen()
}
