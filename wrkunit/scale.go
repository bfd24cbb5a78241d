// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wrkunit

import (
	"math"
	"strconv"
)

// A Scaler formats numbers under a fixed SI prefix.
type Scaler struct {
	Prec   int     // decimals printed
	Factor float64 // value of one unit of Prefix, such as 1000 for "k"
	Prefix string
}

// Format formats val divided by s.Factor, followed by s.Prefix.
func (s Scaler) Format(val float64) string {
	b := strconv.AppendFloat(nil, val/s.Factor, 'f', s.Prec, 64)
	return string(append(b, s.Prefix...))
}

// A prefix is an SI prefix together with the smallest magnitudes that
// print with one, two and three decimals under it.
type prefix struct {
	name   string
	factor float64
	min    [3]float64
}

var prefixes = makePrefixes()

func makePrefixes() []prefix {
	// Parsing the limits from text makes them round exactly the
	// way Format does.
	lits := [3]string{"99.995", "9.9995", ".99995"}
	var ps []prefix
	for i, name := range []string{"G", "M", "k", "", "m", "µ"} {
		exp := 9 - 3*i
		p := prefix{name: name, factor: math.Pow10(exp)}
		for d, lit := range lits {
			p.min[d], _ = strconv.ParseFloat(lit+"e"+strconv.Itoa(exp), 64)
		}
		ps = append(ps, p)
	}
	return ps
}

// Scale formats val with at least four significant digits and an SI
// prefix.
func Scale(val float64) string {
	return CommonScale([]float64{val}).Format(val)
}

// CommonScale returns the Scaler that prints every value of vals with
// at least four significant digits under one shared prefix, as wanted
// for a table column.
func CommonScale(vals []float64) Scaler {
	smallest := 0.0
	for _, v := range vals {
		if v = math.Abs(v); v != 0 && (smallest == 0 || v < smallest) {
			smallest = v
		}
	}
	if smallest == 0 {
		return Scaler{Prec: 3, Factor: 1}
	}

	for _, p := range prefixes {
		for d, min := range p.min {
			if smallest >= min {
				return Scaler{d + 1, p.factor, p.name}
			}
		}
	}

	// Below the last prefix, print more decimals instead.
	last := prefixes[len(prefixes)-1]
	prec := 3
	for v := smallest / last.factor; v < 0.99995 && prec < 10; v *= 10 {
		prec++
	}
	return Scaler{prec, last.factor, last.name}
}
