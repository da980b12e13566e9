package sink

import (
	"errors"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/services"
	"github.com/hxuan190/arb-engine/internal/services/router"
)

const SINK_SERVICE = "sink-service"

// Service drains the router's opportunity channel into an append-only JSONL
// journal and keeps a bounded in-memory tail for the introspection API.
// When no journal path is configured, only the tail is kept.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	conf      *config.EngineConfig
	routerSvc *router.Service

	file *os.File
	done chan struct{}
	wg   sync.WaitGroup

	mu    sync.RWMutex
	tail  []domain.Opportunity
	total uint64
}

// tailCap bounds the in-memory opportunity history.
const tailCap = 256

func (svc *Service) ID() string {
	return SINK_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	if svc.conf == nil {
		return errors.New("invalid engine config")
	}
	svc.routerSvc = c.Instance(router.ROUTER_SERVICE).(*router.Service)
	svc.done = make(chan struct{})
	svc.tail = make([]domain.Opportunity, 0, tailCap)
	return nil
}

func (svc *Service) Start() error {
	if svc.conf.JournalPath != "" {
		f, err := os.OpenFile(svc.conf.JournalPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		svc.file = f
		svc.logger.Info().Str("path", svc.conf.JournalPath).Msg("opportunity journal opened")
	}

	svc.wg.Add(1)
	go svc.drain()
	return nil
}

func (svc *Service) Stop() error {
	close(svc.done)
	svc.wg.Wait()
	if svc.file != nil {
		return svc.file.Close()
	}
	return nil
}

// drain exits on Stop or when the router closes the channel, whichever
// comes first.
func (svc *Service) drain() {
	defer svc.wg.Done()
	for {
		select {
		case <-svc.done:
			return
		case opp, ok := <-svc.routerSvc.Opportunities():
			if !ok {
				return
			}
			svc.record(opp)
		}
	}
}

func (svc *Service) record(opp domain.Opportunity) {
	svc.mu.Lock()
	svc.total++
	if len(svc.tail) == tailCap {
		copy(svc.tail, svc.tail[1:])
		svc.tail = svc.tail[:tailCap-1]
	}
	svc.tail = append(svc.tail, opp)
	svc.mu.Unlock()

	if svc.file == nil {
		return
	}
	line, err := sonic.Marshal(&opp)
	if err != nil {
		svc.logger.Error().Err(err).Msg("journal encode failed")
		return
	}
	line = append(line, '\n')
	if _, err := svc.file.Write(line); err != nil {
		svc.logger.Error().Err(err).Msg("journal write failed")
	}
}

// Recent returns up to n of the latest opportunities, newest last.
func (svc *Service) Recent(n int) []domain.Opportunity {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if n <= 0 || n > len(svc.tail) {
		n = len(svc.tail)
	}
	out := make([]domain.Opportunity, n)
	copy(out, svc.tail[len(svc.tail)-n:])
	return out
}

// Total returns the lifetime count of recorded opportunities.
func (svc *Service) Total() uint64 {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.total
}
