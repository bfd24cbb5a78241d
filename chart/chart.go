// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws wrk2 reports as latency charts.
//
// There are two kinds of chart. A Line chart plots latency against
// percentile, one line per report. A Violin chart reconstructs each
// report's latency density and draws it as a mirrored shape in its
// own lane, so the distributions can be compared side by side.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-moremath/vec"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"golang.org/x/wrkviz/wrkfmt"
	"golang.org/x/wrkviz/wrkunit"
)

// A Kind selects the kind of chart.
type Kind int

const (
	Line Kind = iota
	Violin
)

var kindNames = []string{Line: "line", Violin: "violin"}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if s == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown chart kind %q (want one of %s)", s, strings.Join(kindNames, ", "))
}

// Set implements pflag.Value, so a Kind can be used directly as a
// command-line flag.
func (k *Kind) Set(s string) error {
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Type implements pflag.Value.
func (k *Kind) Type() string {
	return "kind"
}

// Options configures a chart. The zero value is ready to use.
type Options struct {
	// Title is drawn above the chart. It defaults to "Latency".
	Title string

	// Width and Height override the default image size.
	Width, Height vg.Length

	// DPI is the resolution of raster formats. It defaults to 96.
	DPI int
}

func (o Options) title() string {
	if o.Title == "" {
		return "Latency"
	}
	return o.Title
}

func (o Options) size(w, h vg.Length) (vg.Length, vg.Length) {
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// A Renderer draws a chart of a set of reports.
type Renderer interface {
	// Render writes the chart to w in the given image format:
	// "svg", "png" or "pdf".
	Render(w io.Writer, format string, reports wrkfmt.Reports) error
}

// New returns a Renderer for charts of the given kind.
func New(kind Kind, opts Options) (Renderer, error) {
	switch kind {
	case Line:
		return &lineChart{opts}, nil
	case Violin:
		return &violinChart{opts}, nil
	}
	return nil, fmt.Errorf("unknown chart kind %v", kind)
}

// Save renders the chart into the file at path. The image format is
// taken from the file extension.
func Save(path string, r Renderer, reports wrkfmt.Reports) (err error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if err := checkFormat(format); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return r.Render(f, format, reports)
}

// px converts a length given in 96 DPI screen pixels.
func px(n float64) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

// Formats lists the supported image formats.
var Formats = []string{"svg", "png", "pdf"}

func checkFormat(format string) error {
	for _, f := range Formats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported image format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

func newCanvas(format string, w, h vg.Length, dpi int) (vg.CanvasWriterTo, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	if dpi == 0 {
		dpi = 96
	}
	switch format {
	case "svg":
		return vgsvg.New(w, h), nil
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}, nil
	case "pdf":
		return vgpdf.New(w, h), nil
	}
	panic("not reachable")
}

func write(w io.Writer, format string, p *plot.Plot, width, height vg.Length, dpi int) error {
	c, err := newCanvas(format, width, height, dpi)
	if err != nil {
		return err
	}
	p.Draw(draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

// latencyTicks places evenly spaced ticks labeled with wrk2-style
// time units.
type latencyTicks struct {
	n int
}

func (t latencyTicks) Ticks(min, max float64) []plot.Tick {
	if !(max > min) {
		return []plot.Tick{{Value: min, Label: wrkunit.FormatMillis(min)}}
	}
	var ticks []plot.Tick
	for _, v := range vec.Linspace(min, max, t.n) {
		ticks = append(ticks, plot.Tick{Value: v, Label: wrkunit.FormatMillis(v)})
	}
	return ticks
}

// label names report r for a legend or axis.
func label(r *wrkfmt.Report) string {
	if name := r.FileName(); name != "" {
		return name
	}
	return r.Target
}
