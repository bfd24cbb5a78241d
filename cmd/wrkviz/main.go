// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Wrkviz draws latency charts from wrk2 load test results.
//
// Usage:
//
//	wrkviz [flags] [label=]file...
//
// Each input file should contain the output of one or more runs of
// wrk2 with --latency, as in
//
//	wrk2 -t2 -c100 -d30s -R2000 --latency http://127.0.0.1:8080/ > run.txt
//
// If no files are given, or a file is "-", wrkviz reads standard
// input. Reports are labeled with the base name of their file unless
// the argument has the form label=file.
//
// The -r flag selects the chart. "line" plots latency against
// percentile with one line per report. "violin" reconstructs the
// latency distribution of each report and draws it in its own lane.
// The image format follows the extension of the -o file: .svg, .png
// or .pdf.
//
// With --summary, wrkviz prints a table of each report's request
// rate and latencies to standard output. Both -o and --summary may be
// given.
//
// Every flag may also be set in a configuration file passed with
// --config (any format viper reads, such as YAML or TOML), or with an
// environment variable named WRKVIZ_ followed by the flag name in
// upper case, for example WRKVIZ_RENDERER=violin. Command-line flags
// take precedence.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"

	"golang.org/x/wrkviz/chart"
	"golang.org/x/wrkviz/summary"
	"golang.org/x/wrkviz/wrkfmt"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "devel"

func main() {
	os.Exit(wrkviz(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// wrkviz runs the command with args and returns the process exit
// status. Errors are logged to stderr.
func wrkviz(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := newLogger(stderr)
	cmd := newRootCmd(stdin, stdout, log)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}

func newRootCmd(stdin io.Reader, stdout io.Writer, log *logrus.Logger) *cobra.Command {
	v := viper.New()

	var cfgFile string
	kind := chart.Line

	cmd := &cobra.Command{
		Use:     "wrkviz [flags] [label=]file...",
		Short:   "Draw latency charts from wrk2 results",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(v, cmd.Flags(), boundFlags...); err != nil {
				return err
			}
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v.GetBool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(v, log, stdin, stdout, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(log.Out)

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "read flag defaults from `file`")
	f.StringP("output", "o", "", "write the chart to `file` (.svg, .png or .pdf)")
	f.VarP(&kind, "renderer", "r", "chart `kind`: line or violin")
	f.Float64("width", 0, "image width in `cm` (0 for the chart's default)")
	f.Float64("height", 0, "image height in `cm` (0 for the chart's default)")
	f.String("title", "", "chart `title`")
	f.Bool("summary", false, "print a summary table to standard output")
	f.BoolP("verbose", "v", false, "log each report read")

	return cmd
}

// boundFlags are the flags that may also come from the environment or
// a config file.
var boundFlags = []string{"output", "renderer", "width", "height", "title", "summary", "verbose"}

// bindFlags makes the named flags of f visible through v, with
// WRKVIZ_<NAME> environment variables and config file keys as
// fallbacks.
func bindFlags(v *viper.Viper, f *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		fl := f.Lookup(name)
		if fl == nil {
			return fmt.Errorf("binding flags: no flag %q", name)
		}
		if err := v.BindPFlag(name, fl); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	v.SetEnvPrefix("WRKVIZ")
	v.AutomaticEnv()
	return nil
}

func run(v *viper.Viper, log *logrus.Logger, stdin io.Reader, stdout io.Writer, args []string) error {
	output := v.GetString("output")
	if output == "" && !v.GetBool("summary") {
		return errors.New("nothing to do: give an output file with -o or use --summary")
	}
	kind, err := chart.ParseKind(strings.ToLower(v.GetString("renderer")))
	if err != nil {
		return err
	}

	files := wrkfmt.Files{Paths: args, AllowStdin: true, AllowLabels: true, Stdin: stdin}
	reports, err := files.ReadAll()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return wrkfmt.ErrEmptyInput
	}
	for _, r := range reports {
		entry := log.WithFields(logrus.Fields{"target": r.Target, "file": r.FileName()})
		if err := r.Validate(); err != nil {
			entry.Warn(err)
		}
		entry.WithFields(logrus.Fields{
			"duration": r.Duration,
			"rows":     len(r.Spectrum),
		}).Debug("read report")
	}

	if v.GetBool("summary") {
		if err := summary.Fprint(stdout, reports); err != nil {
			return err
		}
	}
	if output == "" {
		return nil
	}

	opts := chart.Options{
		Title:  v.GetString("title"),
		Width:  vg.Length(v.GetFloat64("width")) * vg.Centimeter,
		Height: vg.Length(v.GetFloat64("height")) * vg.Centimeter,
	}
	renderer, err := chart.New(kind, opts)
	if err != nil {
		return err
	}
	if err := chart.Save(output, renderer, reports); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": output, "renderer": kind}).Debug("wrote chart")
	return nil
}
