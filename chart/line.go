// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"golang.org/x/wrkviz/wrkfmt"
)

type lineChart struct {
	opts Options
}

func (c *lineChart) Render(w io.Writer, format string, reports wrkfmt.Reports) error {
	p, err := c.plot(reports)
	if err != nil {
		return err
	}
	width, height := c.opts.size(px(960), px(720))
	return write(w, format, p, width, height, c.opts.DPI)
}

func (c *lineChart) plot(reports wrkfmt.Reports) (*plot.Plot, error) {
	xmin, err := reports.MinPercentile()
	if err != nil {
		return nil, err
	}
	xmax, err := reports.MaxPercentile()
	if err != nil {
		return nil, err
	}
	ymax, err := reports.MaxLatency()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = c.opts.title()
	p.X.Label.Text = "Percentile"
	p.Y.Label.Text = "Latency"
	p.Y.Tick.Marker = latencyTicks{6}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, r := range reports {
		xys := make(plotter.XYs, len(r.Spectrum))
		for j, row := range r.Spectrum {
			xys[j].X = row.Fraction * 100
			xys[j].Y = row.Latency
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Target, err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s: %v req/sec", label(r), r.ReqPerSec), l)
	}

	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = 0, ymax
	return p, nil
}
