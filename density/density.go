// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package density reconstructs an approximate latency density from
// the cumulative percentile spectrum of a wrk2 report, for drawing
// violin (ridge) plots.
//
// The spectrum gives, for a series of latencies, how many requests
// completed at or below each one. Differencing consecutive counts
// gives the number of requests in each latency bucket; the buckets
// are normalized so the tallest one is Headroom high, and the result
// is smoothed with a cubic smoothing spline.
package density

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/wrkviz/internal/spline"
	"golang.org/x/wrkviz/wrkfmt"
)

// ErrDegenerateHistogram is returned when a report's spectrum has no
// bucket with a positive request count, so there is nothing to
// normalize against.
var ErrDegenerateHistogram = errors.New("degenerate histogram: no bucket has requests")

const (
	// Headroom is the density of the tallest bucket. Keeping it
	// below 1 leaves a gap between adjacent violins, each of
	// which is drawn in a lane of height 1.
	Headroom = 0.9

	// Smoothing is the smoothing parameter of the spline fit.
	// It is close to 1, so the curve stays near the buckets and
	// only their sharpest corners are rounded off.
	Smoothing = 0.99
)

// A Point is one sample of a density curve.
type Point struct {
	Latency float64 // milliseconds
	Density float64
}

// Buckets returns the normalized, unsmoothed request density of r:
// one Point per distinct latency, in ascending latency order, with
// the largest Density equal to Headroom.
func Buckets(r *wrkfmt.Report) ([]Point, error) {
	if len(r.Spectrum) == 0 {
		return nil, fmt.Errorf("%s: %w", r.Target, wrkfmt.ErrEmptyInput)
	}

	// Difference the cumulative counts in input order.
	pts := make([]Point, len(r.Spectrum))
	var prev float64
	for i, row := range r.Spectrum {
		cur := float64(row.Count)
		pts[i] = Point{row.Latency, cur - prev}
		prev = cur
	}

	// The spectrum repeats a latency when several percentiles
	// land on it. Merge equal latencies, wherever they are.
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Latency < pts[j].Latency })
	buckets := pts[:0]
	for _, p := range pts {
		if n := len(buckets); n > 0 && buckets[n-1].Latency == p.Latency {
			buckets[n-1].Density += p.Density
			continue
		}
		buckets = append(buckets, p)
	}

	max := buckets[0].Density
	for _, b := range buckets[1:] {
		if b.Density > max {
			max = b.Density
		}
	}
	if !(max > 0) {
		return nil, fmt.Errorf("%s: %w", r.Target, ErrDegenerateHistogram)
	}
	for i := range buckets {
		buckets[i].Density = buckets[i].Density / max * Headroom
	}
	return buckets, nil
}

// Reconstruct returns the smoothed density of r, sampled at the same
// latencies as Buckets returns.
//
// If r has a single distinct latency, there is nothing to fit and
// Reconstruct returns that one bucket as is.
func Reconstruct(r *wrkfmt.Report) ([]Point, error) {
	buckets, err := Buckets(r)
	if err != nil {
		return nil, err
	}
	if len(buckets) < 2 {
		return buckets, nil
	}

	xs := make([]float64, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		xs[i], ys[i] = b.Latency, b.Density
	}
	s, err := spline.Smooth(xs, ys, Smoothing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Target, err)
	}
	for i, y := range s.EvalAll(xs) {
		buckets[i].Density = y
	}
	return buckets, nil
}

// A Band is one sample of a violin: the curve mirrored around the
// center of its lane.
type Band struct {
	Latency      float64
	Upper, Lower float64
}

// Mirror places density curve pts in lane number lane, centered on
// y = lane, extending Density/2 above and below.
func Mirror(pts []Point, lane int) []Band {
	base := float64(lane)
	bands := make([]Band, len(pts))
	for i, p := range pts {
		bands[i] = Band{p.Latency, base + p.Density/2, base - p.Density/2}
	}
	return bands
}
