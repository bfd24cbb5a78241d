// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrkfmt

import "github.com/aclements/go-moremath/stats"

// Reports is an ordered collection of Reports, in input order.
//
// The aggregate methods fold over every spectrum row of every report
// and are recomputed on each call. All of them return ErrEmptyInput
// if there are no reports, or if any report has an empty spectrum.
type Reports []*Report

func (rs Reports) bounds(f func(SpectrumRow) float64) (min, max float64, err error) {
	if len(rs) == 0 {
		return 0, 0, ErrEmptyInput
	}
	xs := make([]float64, 0, 2*len(rs))
	for _, r := range rs {
		rmin, rmax, err := r.bounds(f)
		if err != nil {
			return 0, 0, err
		}
		xs = append(xs, rmin, rmax)
	}
	min, max = stats.Bounds(xs)
	return min, max, nil
}

func (rs Reports) countBounds() (min, max uint64, err error) {
	if len(rs) == 0 {
		return 0, 0, ErrEmptyInput
	}
	for i, r := range rs {
		rmin, rmax, err := r.countBounds()
		if err != nil {
			return 0, 0, err
		}
		if i == 0 || rmin < min {
			min = rmin
		}
		if i == 0 || rmax > max {
			max = rmax
		}
	}
	return min, max, nil
}

// MinLatency returns the smallest latency across all reports.
func (rs Reports) MinLatency() (float64, error) {
	min, _, err := rs.bounds(latency)
	return min, err
}

// MaxLatency returns the largest latency across all reports.
func (rs Reports) MaxLatency() (float64, error) {
	_, max, err := rs.bounds(latency)
	return max, err
}

// MinPercentile returns the smallest percentile across all reports.
func (rs Reports) MinPercentile() (float64, error) {
	min, _, err := rs.bounds(percentile)
	return min, err
}

// MaxPercentile returns the largest percentile across all reports.
func (rs Reports) MaxPercentile() (float64, error) {
	_, max, err := rs.bounds(percentile)
	return max, err
}

// MinCount returns the smallest cumulative count across all reports.
func (rs Reports) MinCount() (uint64, error) {
	min, _, err := rs.countBounds()
	return min, err
}

// MaxCount returns the largest cumulative count across all reports.
func (rs Reports) MaxCount() (uint64, error) {
	_, max, err := rs.countBounds()
	return max, err
}
