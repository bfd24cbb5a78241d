// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrkfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Files reads the reports of several wrk2 output files, in order,
// and labels each report with the file it came from.
//
// A report's label is the base name of its file. When one path is
// listed more than once, each occurrence gets a "#N" suffix, counting
// from 0, so that the copies remain distinguishable.
type Files struct {
	// Paths names the files to read.
	Paths []string

	// AllowStdin makes "-" mean standard input, and makes an
	// empty Paths read standard input alone. Reports read from an
	// unlabeled standard input have no file name.
	AllowStdin bool

	// AllowLabels accepts paths of the form "label=path", which
	// label the reports of path with label verbatim.
	AllowLabels bool

	// Stdin replaces os.Stdin when set.
	Stdin io.Reader
}

// A source is one resolved entry of Files.Paths.
type source struct {
	path     string
	label    string
	stdin    bool
	explicit bool
}

func (f *Files) sources() []source {
	paths := f.Paths
	if f.AllowStdin && len(paths) == 0 {
		paths = []string{"-"}
	}

	srcs := make([]source, len(paths))
	seen := make(map[string]int)
	for i, arg := range paths {
		s := source{path: arg}
		if eq := strings.IndexByte(arg, '='); f.AllowLabels && eq >= 0 {
			s.label, s.path, s.explicit = arg[:eq], arg[eq+1:], true
		}
		s.stdin = f.AllowStdin && s.path == "-"
		if !s.explicit && !s.stdin {
			s.label = filepath.Base(s.path)
			seen[s.path]++
		}
		srcs[i] = s
	}

	next := make(map[string]int)
	for i := range srcs {
		s := &srcs[i]
		if s.explicit || s.stdin || seen[s.path] < 2 {
			continue
		}
		s.label += fmt.Sprintf("#%d", next[s.path])
		next[s.path]++
	}
	return srcs
}

// ReadAll returns the reports of every file, concatenated in order.
// It fails on the first file that cannot be opened or parsed.
func (f *Files) ReadAll() (Reports, error) {
	var all Reports
	for _, src := range f.sources() {
		reports, err := f.read(src)
		if err != nil {
			return nil, err
		}
		if src.label != "" {
			for _, r := range reports {
				r.SetFileName(src.label)
			}
		}
		all = append(all, reports...)
	}
	return all, nil
}

func (f *Files) read(src source) (Reports, error) {
	if src.stdin {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Read(in, "<stdin>")
	}
	file, err := os.Open(src.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file, src.path)
}
