package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/san-kum/idealgas/internal/gas"
)

// Ensemble runs independent containers, one per seed, concurrently. Each
// container is still advanced by a single goroutine.
type Ensemble struct {
	cfg       gas.Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

// NewEnsemble prepares numRuns containers seeded seedStart, seedStart+1, ...
// metrics builds a fresh metric set per run; it may be nil.
func NewEnsemble(cfg gas.Config, numRuns int, seedStart int64, metrics func() []Metric) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart, metrics: metrics}
}

// Run returns results in seed order.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(e.seedStart + int64(idx)))
			s := New(gas.New(e.cfg, rng))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
