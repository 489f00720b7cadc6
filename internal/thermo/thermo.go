// Package thermo defines the collaborator surface for chemical-equilibrium
// property lookups. The core never fetches reference data itself: callers
// inject a LookupFunc and the simulation treats it as a pure function of the
// operating point.
package thermo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Request identifies one operating point of a propellant combination.
type Request struct {
	Oxidizer     string
	Fuel         string
	Pressure     float64 // Pa
	MixtureRatio float64 // O/F, 0 for premixed solids
}

// Properties is the equilibrium result for a Request.
type Properties struct {
	CStar       float64 // m/s
	Gamma       float64
	MolWeight   float64 // kg/kmol
	ChamberTemp float64 // K
}

// LookupFunc resolves a Request, possibly over the network. Implementations
// must honor ctx cancellation.
type LookupFunc func(ctx context.Context, req Request) (Properties, error)

// TimeoutError reports a provider call that exceeded its deadline. The core
// does not retry internally; callers may retry with backoff.
type TimeoutError struct {
	Req     Request
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("thermo: lookup %s/%s at %g Pa timed out after %s",
		e.Req.Oxidizer, e.Req.Fuel, e.Req.Pressure, e.Elapsed)
}

// WithTimeout bounds every call through fn by d, surfacing a *TimeoutError
// instead of hanging on a slow provider.
func WithTimeout(fn LookupFunc, d time.Duration) LookupFunc {
	return func(ctx context.Context, req Request) (Properties, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type answer struct {
			props Properties
			err   error
		}
		ch := make(chan answer, 1)
		start := time.Now()
		go func() {
			p, err := fn(ctx, req)
			ch <- answer{p, err}
		}()

		select {
		case a := <-ch:
			if errors.Is(a.err, context.DeadlineExceeded) {
				return Properties{}, &TimeoutError{Req: req, Elapsed: time.Since(start)}
			}
			return a.props, a.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return Properties{}, &TimeoutError{Req: req, Elapsed: time.Since(start)}
			}
			return Properties{}, ctx.Err()
		}
	}
}

// cacheKey quantizes the operating point so nearby lookups share an entry:
// pressure to 1 kPa, mixture ratio to 0.01.
type cacheKey struct {
	oxidizer string
	fuel     string
	pKPa     int64
	mrCenti  int64
}

func keyFor(req Request) cacheKey {
	return cacheKey{
		oxidizer: req.Oxidizer,
		fuel:     req.Fuel,
		pKPa:     int64(math.Round(req.Pressure / 1000)),
		mrCenti:  int64(math.Round(req.MixtureRatio * 100)),
	}
}

// Cache memoizes lookups for one batch of runs. It is an explicit object
// handed to whoever needs it; there is no process-wide cache. Safe for
// concurrent use across parallel runs.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]Properties
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Properties)}
}

// Lookup resolves req through fn, serving quantized repeats from the cache.
// The second return reports whether the result came from the cache, so
// callers can flag approximate reuse in their output metadata.
func (c *Cache) Lookup(ctx context.Context, fn LookupFunc, req Request) (Properties, bool, error) {
	k := keyFor(req)

	c.mu.Lock()
	if p, ok := c.entries[k]; ok {
		c.hits++
		c.mu.Unlock()
		return p, true, nil
	}
	c.misses++
	c.mu.Unlock()

	p, err := fn(ctx, req)
	if err != nil {
		return Properties{}, false, err
	}

	c.mu.Lock()
	c.entries[k] = p
	c.mu.Unlock()
	return p, false, nil
}

// Stats reports cache hits and misses.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
