package feed

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services"
	"github.com/hxuan190/arb-engine/internal/services/market"
	"github.com/hxuan190/arb-engine/internal/services/router"
)

const FEED_SERVICE = "feed-service"

// maxLineBytes bounds a single feed line. Lines beyond it indicate a broken
// producer, not a real event.
const maxLineBytes = 1 << 20

// evaluator is the downstream the dispatcher hands pivot events to.
type evaluator interface {
	Evaluate(ev *domain.PoolEvent, pivot domain.Pivot)
}

// Service consumes the line-delimited event stream, applies cache updates
// and hands pivot events to the router. The reader goroutine owns the
// connection; dispatch workers drain the decoded-event buffer so a slow
// evaluation never stalls the socket.
type Service struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	conf   *config.FeedConfig
	states *market.ShardedStateMap
	eval   evaluator

	events chan *domain.PoolEvent
	done   chan struct{}
	wg     sync.WaitGroup

	mu   sync.Mutex
	conn net.Conn
}

func (svc *Service) ID() string {
	return FEED_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.FEED_CONFIG_KEY).(*config.FeedConfig)
	if svc.conf == nil {
		return errors.New("invalid feed config")
	}
	svc.states = c.Instance(market.ServiceName).(*market.Service).States()
	svc.eval = c.Instance(router.ROUTER_SERVICE).(*router.Service)

	svc.events = make(chan *domain.PoolEvent, svc.conf.EventBuffer)
	svc.done = make(chan struct{})
	return nil
}

func (svc *Service) Start() error {
	workers := svc.conf.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		svc.wg.Add(1)
		go svc.dispatchLoop()
	}

	svc.wg.Add(1)
	go svc.readLoop()

	svc.logger.Info().
		Str("network", svc.conf.Network).
		Str("addr", svc.conf.Addr).
		Int("workers", workers).
		Msg("feed started")
	return nil
}

func (svc *Service) Stop() error {
	close(svc.done)
	svc.mu.Lock()
	if svc.conn != nil {
		svc.conn.Close()
	}
	svc.mu.Unlock()
	svc.wg.Wait()
	close(svc.events)
	return nil
}

// readLoop dials the producer and reconnects with capped exponential
// backoff. The backoff resets after any successful read.
func (svc *Service) readLoop() {
	defer svc.wg.Done()

	backoff := svc.conf.ReconnectMin
	for {
		select {
		case <-svc.done:
			return
		default:
		}

		conn, err := net.Dial(svc.conf.Network, svc.conf.Addr)
		if err != nil {
			svc.logger.Warn().Err(err).Dur("backoff", backoff).Msg("feed dial failed")
			metrics.FeedReconnects.Inc()
			if !svc.sleep(backoff) {
				return
			}
			backoff = nextBackoff(backoff, svc.conf.ReconnectMax)
			continue
		}

		svc.mu.Lock()
		svc.conn = conn
		svc.mu.Unlock()

		svc.logger.Info().Str("addr", svc.conf.Addr).Msg("feed connected")
		if svc.consume(conn) {
			// Any line made it through, start the next attempt fresh.
			backoff = svc.conf.ReconnectMin
		}

		conn.Close()
		svc.mu.Lock()
		svc.conn = nil
		svc.mu.Unlock()

		select {
		case <-svc.done:
			return
		default:
		}
		metrics.FeedReconnects.Inc()
		if !svc.sleep(backoff) {
			return
		}
		backoff = nextBackoff(backoff, svc.conf.ReconnectMax)
	}
}

// consume reads lines until the connection breaks. Returns whether at least
// one line was read, so the caller can reset the backoff.
func (svc *Service) consume(conn net.Conn) bool {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	sawData := false
	for {
		if svc.conf.ReadDeadline > 0 {
			conn.SetReadDeadline(time.Now().Add(svc.conf.ReadDeadline))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				svc.logger.Warn().Err(err).Msg("feed read failed")
			}
			return sawData
		}
		sawData = true

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := ParseLine(line)
		if err != nil {
			metrics.FeedMalformed.Inc()
			continue
		}
		metrics.FeedEvents.WithLabelValues(ev.Type.String()).Inc()
		svc.enqueue(ev)
	}
}

// enqueue never blocks the reader: when the buffer is full the oldest
// queued event is dropped to make room. Stale pool updates are superseded
// by the next event for that pool anyway.
func (svc *Service) enqueue(ev *domain.PoolEvent) {
	select {
	case svc.events <- ev:
		return
	default:
	}
	select {
	case <-svc.events:
		metrics.FeedDropped.Inc()
	default:
	}
	select {
	case svc.events <- ev:
	default:
		metrics.FeedDropped.Inc()
	}
}

func (svc *Service) dispatchLoop() {
	defer svc.wg.Done()
	for {
		select {
		case <-svc.done:
			return
		case ev := <-svc.events:
			if ev != nil {
				svc.handleEvent(ev)
			}
		}
	}
}

// handleEvent applies the cache update and, when the event implies a trade
// direction, runs the evaluation. Events for pools outside the universe are
// counted and ignored; the cache never grows from the feed.
func (svc *Service) handleEvent(ev *domain.PoolEvent) {
	switch ev.Type {
	case domain.EventSyncV2:
		prev, ok := svc.states.UpdateV2Reserves(ev.Pool, ev.Reserve0, ev.Reserve1)
		if !ok {
			metrics.UnknownPoolEvents.Inc()
			return
		}
		metrics.PoolUpdates.WithLabelValues("V2").Inc()
		if pivot, ok := InferV2Pivot(prev, ev); ok {
			svc.eval.Evaluate(ev, pivot)
		}

	case domain.EventSwapV3:
		prev, ok := svc.states.UpdateV3State(ev.Pool, ev.SqrtPriceX96, ev.Liquidity, ev.Tick)
		if !ok {
			metrics.UnknownPoolEvents.Inc()
			return
		}
		metrics.PoolUpdates.WithLabelValues("V3").Inc()
		if pivot, ok := InferV3Pivot(prev, ev); ok {
			svc.eval.Evaluate(ev, pivot)
		}
	}
}

func (svc *Service) sleep(d time.Duration) bool {
	select {
	case <-svc.done:
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
