// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package summary prints a one-line-per-report overview of wrk2
// results.
package summary

import (
	"io"
	"time"

	"github.com/aclements/go-gg/table"

	"golang.org/x/wrkviz/wrkfmt"
	"golang.org/x/wrkviz/wrkunit"
)

// A Row summarizes one report. Latencies are preformatted with
// wrk2-style units.
type Row struct {
	File        string
	Target      string
	Duration    time.Duration
	Connections int
	ReqPerSec   string
	Min         string
	P50         string
	P99         string
	Max         string
}

// Rows returns one Row per report, in order. Request rates share a
// common SI scale. P50 and P99 come from the HDR histogram and are
// "-" if the histogram does not contain them.
func Rows(reports wrkfmt.Reports) ([]Row, error) {
	rates := make([]float64, len(reports))
	for i, r := range reports {
		rates[i] = r.ReqPerSec
	}
	scale := wrkunit.CommonScale(rates)

	rows := make([]Row, 0, len(reports))
	for _, r := range reports {
		min, err := r.MinLatency()
		if err != nil {
			return nil, err
		}
		max, err := r.MaxLatency()
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			File:        r.FileName(),
			Target:      r.Target,
			Duration:    r.Duration,
			Connections: r.Connections,
			ReqPerSec:   scale.Format(r.ReqPerSec),
			Min:         wrkunit.FormatMillis(min),
			P50:         histogramAt(r, 50),
			P99:         histogramAt(r, 99),
			Max:         wrkunit.FormatMillis(max),
		})
	}
	return rows, nil
}

func histogramAt(r *wrkfmt.Report, pct float64) string {
	for _, e := range r.Histogram {
		if e.Percentile == pct {
			return wrkunit.FormatMillis(e.Latency)
		}
	}
	return "-"
}

// Fprint writes a table of reports to w.
func Fprint(w io.Writer, reports wrkfmt.Reports) error {
	rows, err := Rows(reports)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return wrkfmt.ErrEmptyInput
	}
	return table.Fprint(w, table.TableFromStructs(rows))
}
