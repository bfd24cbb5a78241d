// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrkfmt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func parseTestdata(t *testing.T, name string) Reports {
	t.Helper()
	reports, err := Parse(readTestdata(t, name), name)
	if err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
	return reports
}

var wantTwo = Reports{
	{
		Target:      "http://127.0.0.1:8080/",
		Duration:    30 * time.Second,
		Threads:     2,
		Connections: 100,
		ReqPerSec:   2000.01,
		Histogram: []HistogramEntry{
			{50, 1.18}, {75, 1.5}, {90, 1.9}, {99, 2.5},
			{99.9, 3.1}, {99.99, 4}, {99.999, 4.3}, {100, 4.3},
		},
		Spectrum: []SpectrumRow{
			{0.297, 0, 1, 1},
			{0.647, 0.1, 5986, 1.11},
			{0.647, 0.15, 6001, 1.18},
			{0.905, 0.25, 15002, 1.33},
			{1.18, 0.5, 30010, 2},
			{1.5, 0.75, 45003, 4},
			{1.9, 0.9, 54004, 10},
			{2.5, 0.99, 59404, 100},
			{3.1, 0.999, 59940, 1000},
		},
	},
	{
		Target:      "http://localhost:9090/api",
		Duration:    10 * time.Second,
		Threads:     1,
		Connections: 10,
		ReqPerSec:   499.87,
		Histogram:   []HistogramEntry{{50, 0.5}, {90, 2000}, {100, 2500}},
		Spectrum: []SpectrumRow{
			{0.5, 0, 1, 1},
			{100, 0.5, 2500, 2},
			{2000, 0.9, 4500, 10},
		},
	},
}

func TestParse(t *testing.T) {
	got := parseTestdata(t, "two.txt")
	if diff := cmp.Diff(wantTwo, got, cmp.AllowUnexported(Report{})); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeterministic(t *testing.T) {
	a := parseTestdata(t, "two.txt")
	b := parseTestdata(t, "two.txt")
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Report{})); diff != "" {
		t.Errorf("second parse differs (-first +second):\n%s", diff)
	}
}

func TestParseMonotonic(t *testing.T) {
	for _, r := range parseTestdata(t, "two.txt") {
		if err := r.Validate(); err != nil {
			t.Error(err)
		}
	}
}

func TestParseCRLF(t *testing.T) {
	data := strings.ReplaceAll(string(readTestdata(t, "two.txt")), "\n", "\r\n")
	got, err := Parse([]byte(data), "crlf")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantTwo, got, cmp.AllowUnexported(Report{})); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSurroundingText(t *testing.T) {
	data := "$ wrk -t2 -c100 -d30s -R2000 --latency http://127.0.0.1:8080/\n" +
		string(readTestdata(t, "two.txt")) +
		"\n$ exit\nsome trailing text\n"
	got, err := Parse([]byte(data), "shell")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
}

func TestParseNoFileNameAttached(t *testing.T) {
	for _, r := range parseTestdata(t, "two.txt") {
		if r.FileName() != "" {
			t.Errorf("%s: parser attached file name %q", r.Target, r.FileName())
		}
	}
}

func TestParseErrors(t *testing.T) {
	two := string(readTestdata(t, "two.txt"))
	first := two[:strings.Index(two, "Running 10s")]
	for _, test := range []struct {
		name string
		data string
		line int
		msg  string
	}{
		{"empty", "", 1, `no "Running" line found`},
		{"blank", "\n\n  \n", 1, `no "Running" line found`},
		{"no duration", "Running test @ x\n", 1, "expected test duration"},
		{"minutes", "Running 1m test @ x\n", 1, `expected "s test @ "`},
		{"no histogram header", "Running 1s test @ x\nRequests/sec: 1.00\n", 2, "missing"},
		{"integer percentile", "Running 1s test @ x\n  " + histogramHeader + "\n 50%    1.18ms\n", 3, "expected histogram entry"},
		{"integer latency", "Running 1s test @ x\n  " + histogramHeader + "\n 50.000%    1ms\n", 3, "expected histogram entry"},
		{"bad unit", "Running 1s test @ x\n  " + histogramHeader + "\n 50.000%    1.00m\n", 3, "expected histogram entry"},
		{"no requests", string(readTestdata(t, "noreqs.txt")), 31, `missing "Requests/sec:"`},
		{"bad requests", strings.Replace(first, "2000.01", "2000", 1), 36, "malformed Requests/sec: value"},
		{"no transfer", strings.Replace(first, "Transfer/sec:", "Bandwidth:", 1), 37, `missing "Transfer/sec:"`},
		{"malformed second run", two + "Running 5s test @ y\nnothing here\n", 58, "missing"},
	} {
		t.Run(test.name, func(t *testing.T) {
			reports, err := Parse([]byte(test.data), "test")
			if reports != nil {
				t.Errorf("got %d reports along with error, want none", len(reports))
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("got error %v, want *SyntaxError", err)
			}
			if se.FileName != "test" || se.Line != test.line {
				t.Errorf("error at %s:%d, want test:%d", se.FileName, se.Line, test.line)
			}
			if !strings.Contains(se.Msg, test.msg) {
				t.Errorf("error %q does not mention %q", se.Msg, test.msg)
			}
		})
	}
}

func TestParseHistogramLine(t *testing.T) {
	for _, test := range []struct {
		line string
		want HistogramEntry
		ok   bool
	}{
		{" 50.000%  500.00us", HistogramEntry{50, 0.5}, true},
		{" 90.000%    2.00s", HistogramEntry{90, 2000}, true},
		{" 99.000%   10.50ms", HistogramEntry{99, 10.5}, true},
		{"100.000%    3000000.00ns", HistogramEntry{100, 3}, true},
		{" 50.000%    1.18ms  ", HistogramEntry{50, 1.18}, true},
		{" 50.000%1.18ms", HistogramEntry{}, false},
		{" 50.000%    1.18", HistogramEntry{}, false},
		{" 50.000%    1.18msec", HistogramEntry{}, false},
		{" 50.%    1.18ms", HistogramEntry{}, false},
		{"", HistogramEntry{}, false},
	} {
		got, ok := parseHistogramLine(test.line)
		if got != test.want || ok != test.ok {
			t.Errorf("parseHistogramLine(%q) = %v, %v; want %v, %v", test.line, got, ok, test.want, test.ok)
		}
	}
}

func TestParseSpectrumLine(t *testing.T) {
	for _, test := range []struct {
		line string
		want SpectrumRow
		ok   bool
	}{
		{"       0.647     0.100000         5986         1.11", SpectrumRow{0.647, 0.1, 5986, 1.11}, true},
		{"0.647\t0.100000\t5986\t1.11", SpectrumRow{0.647, 0.1, 5986, 1.11}, true},
		{"       4.303     1.000000        60000          inf", SpectrumRow{}, false},
		{"       4.303     1.000000        60000.0       1.00", SpectrumRow{}, false},
		{"       4.303     1            60000       1.00", SpectrumRow{}, false},
		{"       4.303     1.000000        60000", SpectrumRow{}, false},
		{"       4.303     1.000000        60000  1.00  2.00", SpectrumRow{}, false},
		{"#[Mean    =        1.226, StdDeviation   =        0.512]", SpectrumRow{}, false},
	} {
		got, ok := parseSpectrumLine(test.line)
		if got != test.want || ok != test.ok {
			t.Errorf("parseSpectrumLine(%q) = %v, %v; want %v, %v", test.line, got, ok, test.want, test.ok)
		}
	}
}

func TestDecimal(t *testing.T) {
	for _, test := range []struct {
		in   string
		v    float64
		rest string
		ok   bool
	}{
		{"1.5ms", 1.5, "ms", true},
		{"2000.01", 2000.01, "", true},
		{"0.000000 x", 0, " x", true},
		{"12", 0, "12", false},
		{"12.", 0, "12.", false},
		{".5", 0, ".5", false},
		{"-1.0", 0, "-1.0", false},
		{"", 0, "", false},
	} {
		v, rest, ok := decimal(test.in)
		if v != test.v || rest != test.rest || ok != test.ok {
			t.Errorf("decimal(%q) = %v, %q, %v; want %v, %q, %v", test.in, v, rest, ok, test.v, test.rest, test.ok)
		}
	}
}
