package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/idealgas/internal/sim"
)

var ErrNoCandidates = errors.New("optim: grid search produced no result")

// Build turns one grid point into a ready simulator and the run settings
// to drive it with, so a grid over the frame count takes effect.
type Build func(params map[string]float64) (*sim.Simulator, sim.Config, error)

// GridSearch tries every combination of the given values and keeps the one
// with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Search returns the best parameters, their metric value and every
// candidate in evaluation order. Build or run errors abort the search.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (map[string]float64, float64, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var all []Candidate
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &all); err != nil {
		return nil, 0, all, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, c := range all {
		if c.Value < best {
			best, bestParams = c.Value, c.Params
		}
	}
	if bestParams == nil {
		return nil, 0, all, ErrNoCandidates
	}
	return bestParams, best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Build,
	metricName string,
	all *[]Candidate,
) error {
	if depth == len(g.paramNames) {
		s, cfg, err := build(current)
		if err != nil {
			return err
		}

		result, err := s.Run(ctx, cfg)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: metric %q not recorded", metricName)
		}
		*all = append(*all, Candidate{Params: current, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, all); err != nil {
			return err
		}
	}
	return nil
}
