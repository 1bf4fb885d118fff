package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/dynint/internal/dynamo"
)

// Ensemble runs independent members of one stochastic system. Member i uses
// seed seedStart+i, so results do not depend on scheduling.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart, workers: runtime.GOMAXPROCS(0)}
}

// SetWorkers bounds the number of members run at once.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run integrates every member. Metrics are not shared: each member gets
// only the observers of the base simulator. The first member error cancels
// the rest.
func (e *Ensemble) Run(ctx context.Context, y0 dynamo.Value, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("sim: ensemble needs at least one member, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			member := cfg
			member.Seed = e.seedStart + int64(i)

			s := New(e.base.stepper)
			for _, o := range e.base.observers {
				s.AddObserver(o)
			}

			res, err := s.Run(ctx, y0, member)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger().Info("ensemble finished", "members", e.numRuns, "method", e.base.stepper.Name())
	return results, nil
}

// FinalMoments returns the mean and unbiased variance of component i of the
// members' final states.
func FinalMoments(results []*Result, i int) (mean, variance float64) {
	xs := make([]float64, len(results))
	for k, r := range results {
		xs[k] = r.Final().At(i)
	}
	return stat.MeanVariance(xs, nil)
}
