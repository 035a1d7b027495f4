// Package forecast fits an ensemble of regression trees over a
// (year, amount) series and projects amounts for future years.
//
// The estimator is a small bagged forest: each tree is trained on a
// bootstrap sample of the series and splits on year thresholds that
// minimize the squared error, the forest prediction is the mean over
// trees. The model is order-insensitive, tolerant of small noisy samples
// and assumes no particular trend shape. Predictions beyond the observed
// range are piecewise constant, i.e. dominated by the latest years.
package forecast

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"portfolio/internal/core"
)

// ErrInsufficientData is returned when the series has no points at all.
// A single point is accepted and degenerates to a constant predictor,
// which is statistically meaningless but well defined.
var ErrInsufficientData = errors.New("not enough data points for a forecast")

const (
	// Horizon is the number of future years predicted after the last
	// observed year.
	Horizon = 2

	DefaultTrees = 100

	maxDepth    = 4
	minLeafSize = 1
)

type Forecaster struct {
	trees int
}

func New(trees int) *Forecaster {
	if trees < 1 {
		trees = DefaultTrees
	}
	return &Forecaster{trees: trees}
}

// Forecast fits the series and predicts the Horizon years following the
// maximum observed year.
func (f *Forecaster) Forecast(series []core.SeriesPoint) ([]core.ForecastPoint, error) {
	model, err := f.Fit(series)
	if err != nil {
		return nil, err
	}

	lastYear := series[0].Year
	for _, p := range series {
		if p.Year > lastYear {
			lastYear = p.Year
		}
	}

	points := make([]core.ForecastPoint, 0, Horizon)
	for i := 1; i <= Horizon; i++ {
		year := lastYear + i
		points = append(points, core.ForecastPoint{
			Year:   year,
			Amount: model.Predict(year),
		})
	}
	return points, nil
}

// Model is a fitted forest. It is immutable and safe for concurrent use.
type Model struct {
	roots []*node
}

// Fit trains the ensemble. Fits are deterministic for a given series: the
// bootstrap generator is seeded from the data itself.
func (f *Forecaster) Fit(series []core.SeriesPoint) (*Model, error) {
	if len(series) == 0 {
		return nil, ErrInsufficientData
	}

	rng := rand.New(rand.NewPCG(seedFrom(series), uint64(len(series))))

	roots := make([]*node, f.trees)
	sample := make([]core.SeriesPoint, len(series))
	for t := range roots {
		for i := range sample {
			sample[i] = series[rng.IntN(len(series))]
		}
		roots[t] = buildTree(sample, maxDepth)
	}
	return &Model{roots: roots}, nil
}

// Predict returns the ensemble mean for a year. The result is finite for
// any finite training data.
func (m *Model) Predict(year int) float64 {
	var sum float64
	for _, root := range m.roots {
		sum += root.predict(year)
	}
	return sum / float64(len(m.roots))
}

type node struct {
	// Leaf when left is nil.
	left, right *node
	threshold   int // go left when year <= threshold
	value       float64
}

func (n *node) predict(year int) float64 {
	for n.left != nil {
		if year <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func buildTree(points []core.SeriesPoint, depth int) *node {
	if depth == 0 || len(points) <= minLeafSize {
		return &node{value: mean(points)}
	}

	threshold, ok := bestSplit(points)
	if !ok {
		return &node{value: mean(points)}
	}

	var left, right []core.SeriesPoint
	for _, p := range points {
		if p.Year <= threshold {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	return &node{
		threshold: threshold,
		left:      buildTree(left, depth-1),
		right:     buildTree(right, depth-1),
	}
}

// bestSplit scans the candidate year thresholds and returns the one with
// the lowest combined squared error. ok is false when all points share a
// single year.
func bestSplit(points []core.SeriesPoint) (threshold int, ok bool) {
	years := make([]int, 0, len(points))
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	if len(years) < 2 {
		return 0, false
	}
	sort.Ints(years)

	best := math.Inf(1)
	for _, candidate := range years[:len(years)-1] {
		var lSum, lSq, rSum, rSq float64
		var lN, rN float64
		for _, p := range points {
			if p.Year <= candidate {
				lSum += p.Amount
				lSq += p.Amount * p.Amount
				lN++
			} else {
				rSum += p.Amount
				rSq += p.Amount * p.Amount
				rN++
			}
		}
		// SSE = sum(x^2) - n*mean^2, per side.
		sse := (lSq - lSum*lSum/lN) + (rSq - rSum*rSum/rN)
		if sse < best {
			best = sse
			threshold = candidate
			ok = true
		}
	}
	return threshold, ok
}

func mean(points []core.SeriesPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.Amount
	}
	return sum / float64(len(points))
}

func seedFrom(series []core.SeriesPoint) uint64 {
	var seed uint64 = 1469598103934665603
	for _, p := range series {
		seed = (seed ^ uint64(p.Year)) * 1099511628211
		seed = (seed ^ math.Float64bits(p.Amount)) * 1099511628211
	}
	return seed
}
