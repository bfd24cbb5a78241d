// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wrkfmt parses the text output of the wrk2 HTTP load
// generator into Reports.
//
// An input may hold several runs back to back, for example when the
// output of several invocations is concatenated into one file. Each
// run must look like this, with any other lines in between ignored:
//
//	Running 30s test @ http://127.0.0.1:8080/
//	  2 threads and 100 connections
//	  ...
//	  Latency Distribution (HdrHistogram - Recorded Latency)
//	 50.000%    1.18ms
//	 ...
//	  Detailed Percentile spectrum:
//	       Value   Percentile   TotalCount 1/(1-Percentile)
//
//	       0.297     0.000000            1         1.00
//	       ...
//	       4.303     1.000000        59999          inf
//	  ...
//	Requests/sec:   2000.01
//	Transfer/sec:    269.21KB
//
// Numbers in the histogram, the spectrum and the Requests/sec line
// must have a fractional part ("1.00", not "1").
//
// Text before the first "Running" line and after the last run, such
// as a shell prompt captured with the output, is ignored.
package wrkfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/wrkviz/wrkunit"
)

// A SyntaxError reports input that does not follow the wrk2 output
// grammar. Line is 1-based.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

// Literal markers of the wrk2 output. They must match byte for byte.
const (
	startPrefix     = "Running "
	histogramHeader = "Latency Distribution (HdrHistogram - Recorded Latency)"
	spectrumHeader  = "Detailed Percentile spectrum"
	reqPerSecLabel  = "Requests/sec:"
	transferLabel   = "Transfer/sec:"
)

// Parse parses every run in data. fileName is used in error messages
// only; it is not attached to the Reports (see Report.SetFileName).
//
// Parse fails if data contains no run, or if any run is malformed.
// On failure it returns a *SyntaxError and no Reports.
// Text after the last run is ignored.
func Parse(data []byte, fileName string) (Reports, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	p := &parser{lines: splitLines(data), fileName: fileName}

	var reports Reports
	for p.seekStart() {
		r, err := p.report()
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if len(reports) == 0 {
		return nil, p.errorf(1, "no %q line found", strings.TrimSpace(startPrefix))
	}
	return reports, nil
}

// Read reads all of r and parses it with Parse.
func Read(r io.Reader, fileName string) (Reports, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return Parse(data, fileName)
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		// Final newline.
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type parser struct {
	lines    []string
	pos      int // index of the next unconsumed line
	fileName string
}

func (p *parser) errorf(line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{p.fileName, line, fmt.Sprintf(format, args...)}
}

// lineNo returns the 1-based number of the next unconsumed line.
func (p *parser) lineNo() int {
	return p.pos + 1
}

func (p *parser) eof() bool {
	return p.pos >= len(p.lines)
}

// next consumes and returns the next line.
func (p *parser) next() string {
	l := p.lines[p.pos]
	p.pos++
	return l
}

// seekStart advances to the next start line and reports whether there
// is one. Everything before it is ignored.
func (p *parser) seekStart() bool {
	for ; !p.eof(); p.pos++ {
		if strings.HasPrefix(p.lines[p.pos], startPrefix) {
			return true
		}
	}
	return false
}

// skipUntil consumes lines up to and including the first one that
// contains lit, and returns the text following lit on that line.
// It does not look past the start of the next run, so a section
// missing from one run is never satisfied by the run after it.
// Lines that are skipped are passed to visit, if non-nil.
func (p *parser) skipUntil(lit string, visit func(line string)) (string, error) {
	from := p.lineNo()
	for !p.eof() {
		l := p.lines[p.pos]
		if strings.HasPrefix(l, startPrefix) {
			break
		}
		p.pos++
		if i := strings.Index(l, lit); i >= 0 {
			return l[i+len(lit):], nil
		}
		if visit != nil {
			visit(l)
		}
	}
	return "", p.errorf(from, "missing %q", lit)
}

// skipBlank consumes lines that are empty or all white space.
func (p *parser) skipBlank() {
	for !p.eof() && isBlank(p.lines[p.pos]) {
		p.pos++
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (p *parser) report() (*Report, error) {
	r := new(Report)

	// Running <N>s test @ <target>
	startLine := p.lineNo()
	var err error
	r.Duration, r.Target, err = parseStartLine(p.next())
	if err != nil {
		return nil, p.errorf(startLine, "%v", err)
	}

	_, err = p.skipUntil(histogramHeader, func(l string) {
		if t, c, ok := parseThreadsLine(l); ok {
			r.Threads, r.Connections = t, c
		}
	})
	if err != nil {
		return nil, err
	}
	if r.Histogram, err = p.histogram(); err != nil {
		return nil, err
	}

	// The header line and the column header line after it.
	if _, err := p.skipUntil(spectrumHeader, nil); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, p.errorf(p.lineNo(), "missing spectrum column header")
	}
	p.next()

	if r.Spectrum, err = p.spectrum(); err != nil {
		return nil, err
	}

	rest, err := p.skipUntil(reqPerSecLabel, nil)
	if err != nil {
		return nil, err
	}
	v, rest, ok := decimal(strings.TrimLeft(rest, " \t"))
	if !ok || !isBlank(rest) {
		return nil, p.errorf(p.pos, "malformed %s value", reqPerSecLabel)
	}
	r.ReqPerSec = v

	// Bandwidth is not modeled; only check the line is there.
	if _, err := p.skipUntil(transferLabel, nil); err != nil {
		return nil, err
	}
	return r, nil
}

// histogram parses the HdrHistogram block up to the first line that
// is not a histogram entry.
func (p *parser) histogram() ([]HistogramEntry, error) {
	var entries []HistogramEntry
	for {
		p.skipBlank()
		if p.eof() {
			break
		}
		e, ok := parseHistogramLine(p.lines[p.pos])
		if !ok {
			break
		}
		entries = append(entries, e)
		p.pos++
	}
	if len(entries) == 0 {
		return nil, p.errorf(p.lineNo(), "expected histogram entry like \"50.000%%    1.18ms\"")
	}
	return entries, nil
}

// spectrum parses the detailed spectrum rows, then consumes the line
// that ended them, which in well-formed input is the final row with
// "inf" in its last column.
func (p *parser) spectrum() ([]SpectrumRow, error) {
	var rows []SpectrumRow
	for {
		p.skipBlank()
		if p.eof() {
			break
		}
		row, ok := parseSpectrumLine(p.lines[p.pos])
		if !ok {
			break
		}
		rows = append(rows, row)
		p.pos++
	}
	if len(rows) == 0 {
		return nil, p.errorf(p.lineNo(), "expected spectrum row of four numbers")
	}
	if !p.eof() && !strings.HasPrefix(p.lines[p.pos], startPrefix) {
		p.next()
	}
	return rows, nil
}

// parseStartLine parses "Running <N>s test @ <target>".
func parseStartLine(l string) (time.Duration, string, error) {
	rest := strings.TrimPrefix(l, startPrefix)
	n := 0
	for n < len(rest) && isDigit(rest[n]) {
		n++
	}
	if n == 0 {
		return 0, "", fmt.Errorf("expected test duration after %q", startPrefix)
	}
	secs, err := strconv.ParseUint(rest[:n], 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("bad test duration: %w", err)
	}
	rest = rest[n:]
	const mid = "s test @ "
	if !strings.HasPrefix(rest, mid) {
		return 0, "", fmt.Errorf("expected %q after test duration", mid)
	}
	return time.Duration(secs) * time.Second, rest[len(mid):], nil
}

// parseThreadsLine parses "<T> threads and <C> connections".
func parseThreadsLine(l string) (threads, conns int, ok bool) {
	f := strings.Fields(l)
	if len(f) != 5 || f[1] != "threads" || f[2] != "and" || f[4] != "connections" {
		return 0, 0, false
	}
	t, err1 := strconv.Atoi(f[0])
	c, err2 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return t, c, true
}

// parseHistogramLine parses "<percentile>% <value><unit>".
func parseHistogramLine(l string) (HistogramEntry, bool) {
	pct, rest, ok := decimal(strings.TrimLeft(l, " \t"))
	if !ok || !strings.HasPrefix(rest, "%") {
		return HistogramEntry{}, false
	}
	rest = rest[1:]
	trimmed := strings.TrimLeft(rest, " \t")
	if len(trimmed) == len(rest) {
		return HistogramEntry{}, false
	}
	v, rest, ok := decimal(trimmed)
	if !ok {
		return HistogramEntry{}, false
	}
	for _, unit := range wrkunit.Units {
		if !strings.HasPrefix(rest, unit) || !isBlank(rest[len(unit):]) {
			continue
		}
		ms, err := wrkunit.ToMillis(v, unit)
		if err != nil {
			return HistogramEntry{}, false
		}
		return HistogramEntry{Percentile: pct, Latency: ms}, true
	}
	return HistogramEntry{}, false
}

// parseSpectrumLine parses "<latency> <fraction> <count> <unknown>",
// where count is an integer and the rest are decimals.
func parseSpectrumLine(l string) (SpectrumRow, bool) {
	f := strings.Fields(l)
	if len(f) != 4 {
		return SpectrumRow{}, false
	}
	var row SpectrumRow
	var ok bool
	if row.Latency, ok = fullDecimal(f[0]); !ok {
		return SpectrumRow{}, false
	}
	if row.Fraction, ok = fullDecimal(f[1]); !ok {
		return SpectrumRow{}, false
	}
	for i := 0; i < len(f[2]); i++ {
		if !isDigit(f[2][i]) {
			return SpectrumRow{}, false
		}
	}
	count, err := strconv.ParseUint(f[2], 10, 64)
	if err != nil {
		return SpectrumRow{}, false
	}
	row.Count = count
	if row.Unknown, ok = fullDecimal(f[3]); !ok {
		return SpectrumRow{}, false
	}
	return row, true
}

// decimal parses a leading "<digits>.<digits>" from s and returns the
// value and the remainder of s.
func decimal(s string) (v float64, rest string, ok bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 || i == len(s) || s[i] != '.' {
		return 0, s, false
	}
	i++
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == i {
		return 0, s, false
	}
	v, err := strconv.ParseFloat(s[:j], 64)
	if err != nil {
		return 0, s, false
	}
	return v, s[j:], true
}

// fullDecimal is like decimal but requires s to be nothing else.
func fullDecimal(s string) (float64, bool) {
	v, rest, ok := decimal(s)
	return v, ok && rest == ""
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
