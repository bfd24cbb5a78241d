// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrkfmt

import (
	"errors"
	"fmt"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmptyInput is returned by aggregate queries that have no data
// to fold over: an empty Reports, or a Report with no spectrum rows.
var ErrEmptyInput = errors.New("no latency data")

// A Report is the parsed result of one wrk2 run.
//
// The parser constructs Reports; callers must treat every exported
// field as read-only. The only permitted mutation is attaching a
// source file name with SetFileName.
type Report struct {
	// Target is the text after "test @ " on the start line,
	// usually a URL.
	Target string

	// Duration is the configured test length. wrk2 prints it in
	// whole seconds.
	Duration time.Duration

	// Threads and Connections come from the "N threads and M
	// connections" line if the input has one, and are 0 otherwise.
	Threads, Connections int

	// ReqPerSec is the overall throughput from the "Requests/sec:"
	// line.
	ReqPerSec float64

	// Histogram is the coarse HdrHistogram summary, in input order.
	Histogram []HistogramEntry

	// Spectrum is the detailed percentile spectrum, in input order.
	// Count and Fraction are non-decreasing across rows.
	Spectrum []SpectrumRow

	fileName string
}

// A HistogramEntry is one line of the HdrHistogram summary, such as
// "99.000%    2.50ms".
type HistogramEntry struct {
	Percentile float64 // 0 to 100
	Latency    float64 // milliseconds
}

// A SpectrumRow is one row of the detailed percentile spectrum.
type SpectrumRow struct {
	Latency  float64 // milliseconds
	Fraction float64 // cumulative fraction of requests, 0 to 1
	Count    uint64  // cumulative request count

	// Unknown holds the fourth column. It is parsed so that rows
	// are validated, but its meaning is not documented by the
	// tool and nothing uses it.
	Unknown float64
}

// FileName returns the name of the file r was read from, or "" if
// none has been attached.
func (r *Report) FileName() string {
	return r.fileName
}

// SetFileName records the file r was read from. It may be called at
// most once per Report.
func (r *Report) SetFileName(name string) {
	if r.fileName != "" {
		panic(fmt.Sprintf("wrkfmt: file name of %s already set to %q", r.Target, r.fileName))
	}
	r.fileName = name
}

// Validate checks that the spectrum is a cumulative distribution:
// Count and Fraction must never decrease from one row to the next.
func (r *Report) Validate() error {
	for i := 1; i < len(r.Spectrum); i++ {
		prev, cur := r.Spectrum[i-1], r.Spectrum[i]
		if cur.Count < prev.Count {
			return fmt.Errorf("%s: spectrum row %d: count %d decreases from %d", r.Target, i, cur.Count, prev.Count)
		}
		if cur.Fraction < prev.Fraction {
			return fmt.Errorf("%s: spectrum row %d: fraction %v decreases from %v", r.Target, i, cur.Fraction, prev.Fraction)
		}
	}
	return nil
}

// spectrumColumn extracts one column of r's spectrum.
func (r *Report) spectrumColumn(f func(SpectrumRow) float64) []float64 {
	xs := make([]float64, len(r.Spectrum))
	for i, row := range r.Spectrum {
		xs[i] = f(row)
	}
	return xs
}

func (r *Report) bounds(f func(SpectrumRow) float64) (min, max float64, err error) {
	if len(r.Spectrum) == 0 {
		return 0, 0, fmt.Errorf("%s: %w", r.Target, ErrEmptyInput)
	}
	min, max = stats.Bounds(r.spectrumColumn(f))
	return min, max, nil
}

func latency(row SpectrumRow) float64    { return row.Latency }
func percentile(row SpectrumRow) float64 { return row.Fraction * 100 }

// countBounds folds Count directly to keep it exact; counts above
// 2^53 would not survive a round trip through float64.
func (r *Report) countBounds() (min, max uint64, err error) {
	if len(r.Spectrum) == 0 {
		return 0, 0, fmt.Errorf("%s: %w", r.Target, ErrEmptyInput)
	}
	min, max = r.Spectrum[0].Count, r.Spectrum[0].Count
	for _, row := range r.Spectrum[1:] {
		if row.Count < min {
			min = row.Count
		}
		if row.Count > max {
			max = row.Count
		}
	}
	return min, max, nil
}

// MinLatency returns the smallest latency in r's spectrum, in
// milliseconds.
func (r *Report) MinLatency() (float64, error) {
	min, _, err := r.bounds(latency)
	return min, err
}

// MaxLatency returns the largest latency in r's spectrum, in
// milliseconds.
func (r *Report) MaxLatency() (float64, error) {
	_, max, err := r.bounds(latency)
	return max, err
}

// MinPercentile returns the smallest percentile (0 to 100) in r's
// spectrum.
func (r *Report) MinPercentile() (float64, error) {
	min, _, err := r.bounds(percentile)
	return min, err
}

// MaxPercentile returns the largest percentile (0 to 100) in r's
// spectrum.
func (r *Report) MaxPercentile() (float64, error) {
	_, max, err := r.bounds(percentile)
	return max, err
}

// MinCount returns the smallest cumulative count in r's spectrum.
func (r *Report) MinCount() (uint64, error) {
	min, _, err := r.countBounds()
	return min, err
}

// MaxCount returns the largest cumulative count in r's spectrum.
func (r *Report) MaxCount() (uint64, error) {
	_, max, err := r.countBounds()
	return max, err
}
