// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package density

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"golang.org/x/wrkviz/wrkfmt"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func report(rows ...[2]float64) *wrkfmt.Report {
	r := &wrkfmt.Report{Target: "test"}
	for _, row := range rows {
		r.Spectrum = append(r.Spectrum, wrkfmt.SpectrumRow{Latency: row[0], Count: uint64(row[1])})
	}
	return r
}

func TestBuckets(t *testing.T) {
	for _, test := range []struct {
		name string
		r    *wrkfmt.Report
		want []Point
	}{
		{
			"duplicate latency",
			report([2]float64{1.0, 10}, [2]float64{1.0, 15}, [2]float64{2.0, 20}),
			[]Point{{1.0, 0.9}, {2.0, 0.3}},
		},
		{
			"distinct",
			report([2]float64{0.5, 2}, [2]float64{1, 6}, [2]float64{4, 7}),
			[]Point{{0.5, 0.45}, {1, 0.9}, {4, 0.225}},
		},
		{
			"non-adjacent duplicate",
			report([2]float64{1, 4}, [2]float64{2, 6}, [2]float64{1, 10}),
			[]Point{{1, 0.9}, {2, 0.225}},
		},
		{
			"zero-width bucket",
			report([2]float64{1, 5}, [2]float64{2, 5}, [2]float64{3, 10}),
			[]Point{{1, 0.9}, {2, 0}, {3, 0.9}},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := Buckets(test.r)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got, approx); diff != "" {
				t.Errorf("Buckets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBucketsDoesNotModifyReport(t *testing.T) {
	r := report([2]float64{2, 1}, [2]float64{1, 5})
	before := append([]wrkfmt.SpectrumRow(nil), r.Spectrum...)
	if _, err := Reconstruct(r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, r.Spectrum); diff != "" {
		t.Errorf("Reconstruct modified the spectrum (-before +after):\n%s", diff)
	}
}

func TestReconstructTwoBuckets(t *testing.T) {
	// A spline through two points is the line through them.
	got, err := Reconstruct(report([2]float64{1.0, 10}, [2]float64{1.0, 15}, [2]float64{2.0, 20}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Point{{1.0, 0.9}, {2.0, 0.3}}, got, approx); diff != "" {
		t.Errorf("Reconstruct mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstructPlateau(t *testing.T) {
	for name, r := range map[string]*wrkfmt.Report{
		"one row":         report([2]float64{3.5, 100}),
		"one latency":     report([2]float64{3.5, 40}, [2]float64{3.5, 100}),
		"leading zeroes":  report([2]float64{3.5, 0}, [2]float64{3.5, 7}),
		"single positive": report([2]float64{3.5, 1}),
	} {
		got, err := Reconstruct(r)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if diff := cmp.Diff([]Point{{3.5, Headroom}}, got, approx); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestReconstruct(t *testing.T) {
	r := report(
		[2]float64{0.297, 1},
		[2]float64{0.647, 5986},
		[2]float64{0.647, 6001},
		[2]float64{0.905, 15002},
		[2]float64{1.180, 30010},
		[2]float64{1.500, 45003},
		[2]float64{1.900, 54004},
		[2]float64{2.500, 59404},
		[2]float64{3.100, 59940},
	)
	buckets, err := Buckets(r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Reconstruct(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8 || len(buckets) != 8 {
		t.Fatalf("got %d points and %d buckets, want 8 of each", len(got), len(buckets))
	}
	for i, p := range got {
		if p.Latency != buckets[i].Latency {
			t.Errorf("point %d at latency %v, bucket at %v", i, p.Latency, buckets[i].Latency)
		}
		if math.IsNaN(p.Density) || math.IsInf(p.Density, 0) {
			t.Errorf("point %d has density %v", i, p.Density)
		}
		// Light smoothing stays close to the data.
		if d := math.Abs(p.Density - buckets[i].Density); d > 0.2 {
			t.Errorf("point %d: smoothed %v is far from bucket %v", i, p.Density, buckets[i].Density)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		r    *wrkfmt.Report
		want error
	}{
		{"empty", report(), wrkfmt.ErrEmptyInput},
		{"all zero", report([2]float64{1, 0}, [2]float64{2, 0}), ErrDegenerateHistogram},
		{"one zero row", report([2]float64{1, 0}), ErrDegenerateHistogram},
	} {
		if _, err := Buckets(test.r); !errors.Is(err, test.want) {
			t.Errorf("%s: Buckets error %v, want %v", test.name, err, test.want)
		}
		if _, err := Reconstruct(test.r); !errors.Is(err, test.want) {
			t.Errorf("%s: Reconstruct error %v, want %v", test.name, err, test.want)
		}
	}
}

func TestMirror(t *testing.T) {
	got := Mirror([]Point{{1, 0.9}, {2, 0.3}, {3, 0}}, 2)
	want := []Band{{1, 2.45, 1.55}, {2, 2.15, 1.85}, {3, 2, 2}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Mirror mismatch (-want +got):\n%s", diff)
	}
}
