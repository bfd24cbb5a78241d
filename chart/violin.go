// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"golang.org/x/wrkviz/density"
	"golang.org/x/wrkviz/wrkfmt"
)

var darkBlue = color.NRGBA{31, 120, 180, 0xff}

type violinChart struct {
	opts Options
}

func (c *violinChart) Render(w io.Writer, format string, reports wrkfmt.Reports) error {
	p, err := c.plot(reports)
	if err != nil {
		return err
	}
	// Grow with the number of lanes.
	width, height := c.opts.size(px(960), px(300+18*float64(len(reports))))
	return write(w, format, p, width, height, c.opts.DPI)
}

func (c *violinChart) plot(reports wrkfmt.Reports) (*plot.Plot, error) {
	xmax, err := reports.MaxLatency()
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = c.opts.title()
	p.X.Label.Text = "Latency"
	p.X.Tick.Marker = latencyTicks{8}
	p.Y.Label.Text = "Input"

	names := make([]string, len(reports))
	for lane, r := range reports {
		pts, err := density.Reconstruct(r)
		if err != nil {
			return nil, err
		}
		poly, err := plotter.NewPolygon(outline(density.Mirror(pts, lane)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Target, err)
		}
		poly.Color = darkBlue
		poly.LineStyle.Color = darkBlue
		p.Add(poly)

		names[lane] = label(r)
		if r.Connections > 0 {
			names[lane] = fmt.Sprintf("%s, %d connections", names[lane], r.Connections)
		}
	}
	p.NominalY(names...)

	p.X.Min, p.X.Max = 0, xmax
	p.Y.Min, p.Y.Max = -0.5, float64(len(reports))-0.5
	return p, nil
}

// outline returns the closed outline of a violin: along the upper
// edge in increasing latency, then back along the lower edge.
func outline(bands []density.Band) plotter.XYs {
	xys := make(plotter.XYs, 0, 2*len(bands))
	for _, b := range bands {
		xys = append(xys, plotter.XY{X: b.Latency, Y: b.Upper})
	}
	for i := len(bands) - 1; i >= 0; i-- {
		xys = append(xys, plotter.XY{X: bands[i].Latency, Y: bands[i].Lower})
	}
	return xys
}
