package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"

	"github.com/san-kum/dynint/internal/config"
	"github.com/san-kum/dynint/internal/diffeq"
	"github.com/san-kum/dynint/internal/experiment"
	"github.com/san-kum/dynint/internal/sim"
)

// ErrNoCandidate is returned when no grid point produced the metric.
var ErrNoCandidate = errors.New("optim: no grid point produced the metric")

func logger() *slog.Logger {
	return slog.Default().With(slog.String("component", "optim"))
}

// GridSearch tries every combination of scalar argument values and keeps
// the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Search runs base once per grid point with the grid arguments replaced and
// returns the arguments minimizing metricName. metrics builds fresh metrics
// for every run. Points whose run fails or stops on an invalid state are
// skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
	metrics func() []sim.Metric,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	best := math.Inf(1)
	var bestParams map[string]float64
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, metrics, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	metrics func() []sim.Metric,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, ok := g.evaluate(ctx, current, base, metricName, metrics)
		if ok && val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, base, metricName, metrics, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	base *config.Config,
	metricName string,
	metrics func() []sim.Metric,
) (float64, bool) {
	cfg := base.Clone()
	if cfg.Args == nil {
		cfg.Args = make(map[string]diffeq.Quantity)
	}
	for k, v := range params {
		cfg.Args[k] = diffeq.Quantity{v}
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		logger().Debug("grid point rejected", "params", params, "err", err)
		return 0, false
	}
	if metrics != nil {
		exp.Setup(metrics())
	}
	result, err := exp.Run(ctx, false)
	if err != nil || len(result.Errors) > 0 {
		logger().Debug("grid point failed", "params", params, "err", err)
		return 0, false
	}
	val, ok := result.Metrics[metricName]
	if !ok || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
