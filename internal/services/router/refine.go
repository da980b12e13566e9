package router

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/domain"
)

const (
	goldenRatio    = 1.6180339887498948482
	goldenMaxIter  = 15 // bounded for latency
	ratioPrecision = 1_000_000
)

// refineInput searches for a better trade size around the event-implied
// amount with a golden-section sweep over [amount/4, amount*4], maximizing
// absolute profit. Returns nil when no probe beats the seed result.
func (e *Evaluator) refineInput(snap *CatalogSnapshot, seed *domain.SimulatedRoute, pivot domain.TokenID, amount *uint256.Int, deadlineAt time.Time) *domain.SimulatedRoute {
	route := &snap.Routes[seed.Route]

	lo := new(uint256.Int).Rsh(amount, 2)
	hi := new(uint256.Int).Lsh(amount, 2)
	if lo.IsZero() || hi.Cmp(lo) <= 0 {
		return nil
	}
	span := new(uint256.Int).Sub(hi, lo)

	probe := func(t float64) *domain.SimulatedRoute {
		if time.Now().After(deadlineAt) {
			return nil
		}
		x := new(uint256.Int).Add(lo, mulRatioU256(span, t))
		if x.IsZero() {
			return nil
		}
		res, err := e.sim.SimulateRoute(seed.Route, route, pivot, x)
		if err != nil || res.Loss {
			return nil
		}
		return res
	}

	better := func(a, b *domain.SimulatedRoute) bool {
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Profit.Cmp(b.Profit) > 0
	}

	a, b := 0.0, 1.0
	c := b - (b-a)/goldenRatio
	d := a + (b-a)/goldenRatio

	fc := probe(c)
	fd := probe(d)

	best := seed
	if better(fc, best) {
		best = fc
	}
	if better(fd, best) {
		best = fd
	}

	for i := 0; i < goldenMaxIter && b-a > 0.01; i++ {
		if time.Now().After(deadlineAt) {
			break
		}
		if better(fc, fd) {
			b = d
			d = c
			fd = fc
			c = b - (b-a)/goldenRatio
			fc = probe(c)
			if better(fc, best) {
				best = fc
			}
		} else {
			a = c
			c = d
			fc = fd
			d = a + (b-a)/goldenRatio
			fd = probe(d)
			if better(fd, best) {
				best = fd
			}
		}
	}

	if best == seed {
		return nil
	}
	return best
}

// mulRatioU256 multiplies an amount by a ratio in [0,1] using fixed-point
// integer math, avoiding float drift on large amounts.
func mulRatioU256(amount *uint256.Int, ratio float64) *uint256.Int {
	if ratio <= 0 {
		return new(uint256.Int)
	}
	if ratio >= 1 {
		return new(uint256.Int).Set(amount)
	}
	fixed := GetU256()
	defer PutU256(fixed)
	fixed.SetUint64(uint64(ratio * ratioPrecision))
	out := new(uint256.Int)
	out.Mul(amount, fixed)
	out.Div(out, uint256.NewInt(ratioPrecision))
	return out
}
