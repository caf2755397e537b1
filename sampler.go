package dualorbit

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/dualorbit/dualorbit/metrics"
	kitlog "github.com/go-kit/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// DisplayMargin scales the maximum distance to size a plot axis.
const DisplayMargin = 1.1

// Positioner is anything which has a position at a given simulation time, e.g. an OrbitModel.
type Positioner interface {
	Position(t float64) ([]float64, error)
}

// SamplePoint is one (t, distance) pair.
type SamplePoint struct {
	T, Distance float64
}

// TimeSeries is a sampled separation, ordered by strictly increasing t. Do not modify it once built.
type TimeSeries struct {
	Points []SamplePoint
	Max    float64 // largest sampled distance
}

// Len returns the number of samples.
func (ts TimeSeries) Len() int {
	return len(ts.Points)
}

// DisplayMax returns the maximum distance with the plot margin applied.
func (ts TimeSeries) DisplayMax() float64 {
	return DisplayMargin * ts.Max
}

// Times returns a copy of the sampled times.
func (ts TimeSeries) Times() []float64 {
	t := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		t[i] = p.T
	}
	return t
}

// Distances returns a copy of the sampled distances.
func (ts TimeSeries) Distances() []float64 {
	d := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		d[i] = p.Distance
	}
	return d
}

// DistanceAt linearly interpolates the series at t, clamping to the first and last samples.
// This is what a tracking marker on the plotted curve reads.
func (ts TimeSeries) DistanceAt(t float64) float64 {
	n := len(ts.Points)
	if n == 0 {
		return math.NaN()
	}
	if t <= ts.Points[0].T {
		return ts.Points[0].Distance
	}
	if t >= ts.Points[n-1].T {
		return ts.Points[n-1].Distance
	}
	i := sort.Search(n, func(i int) bool { return ts.Points[i].T >= t })
	p0, p1 := ts.Points[i-1], ts.Points[i]
	f := (t - p0.T) / (p1.T - p0.T)
	return p0.Distance + f*(p1.Distance-p0.Distance)
}

// Sampler evaluates the separation between two bodies over a time range.
// The zero value samples on a single goroutine without logging nor metrics.
type Sampler struct {
	Workers int
	logger  kitlog.Logger
	metrics *metrics.Collector
}

// NewSampler returns a sampler using up to the provided number of goroutines (GOMAXPROCS if <= 0).
// Both logger and collector may be nil.
func NewSampler(workers int, logger kitlog.Logger, collector *metrics.Collector) *Sampler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Sampler{workers, logger, collector}
}

// SampleDistances samples the distance between a and b at numPoints uniformly spaced times in [tStart, tEnd].
func SampleDistances(a, b Positioner, tStart, tEnd float64, numPoints int) (TimeSeries, error) {
	return NewSampler(0, nil, nil).Sample(context.Background(), a, b, tStart, tEnd, numPoints)
}

// Sample samples the distance between a and b at numPoints uniformly spaced times in [tStart, tEnd],
// both ends included. Points are evaluated in parallel but always returned in increasing t.
func (s *Sampler) Sample(ctx context.Context, a, b Positioner, tStart, tEnd float64, numPoints int) (ts TimeSeries, err error) {
	logger := s.logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	start := time.Now()
	defer func() {
		s.metrics.ObserveRun(numPoints, ts.Max, time.Since(start), err)
	}()
	if numPoints < 2 || !(tEnd > tStart) || math.IsInf(tStart, 0) || math.IsInf(tEnd, 0) {
		err = &InvalidSampleRangeError{tStart, tEnd, numPoints}
		logger.Log("level", "error", "subsys", "sampler", "err", err)
		return TimeSeries{}, err
	}

	times := floats.Span(make([]float64, numPoints), tStart, tEnd)
	times[numPoints-1] = tEnd
	distances := make([]float64, numPoints)

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	chunk := (numPoints + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < numPoints; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > numPoints {
			hi = numPoints
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				pA, err := a.Position(times[i])
				if err != nil {
					return err
				}
				pB, err := b.Position(times[i])
				if err != nil {
					return err
				}
				distances[i] = Distance(pA, pB)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		logger.Log("level", "error", "subsys", "sampler", "err", err)
		return TimeSeries{}, err
	}

	ts.Points = make([]SamplePoint, numPoints)
	for i := range times {
		ts.Points[i] = SamplePoint{times[i], distances[i]}
	}
	ts.Max = floats.Max(distances)
	logger.Log("level", "debug", "subsys", "sampler", "points", numPoints, "start", tStart, "end", tEnd, "max", ts.Max, "workers", workers)
	return ts, nil
}
