// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wrkunit converts the time units printed by wrk2 into
// milliseconds and formats numbers for display.
//
// wrk2 prints latencies with a unit suffix chosen per value, such as
// "512.00us" or "1.23ms". Everything downstream of the parser works
// in milliseconds.
package wrkunit

import (
	"fmt"
	"strconv"
)

// An UnknownUnitError reports a unit suffix that is not one of the
// time units wrk2 prints.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown time unit %q", e.Unit)
}

// Units lists the recognized time units in the order a parser should
// try them. "s" comes first; it cannot be confused with "ms", "us" or
// "ns" because those start with a different byte.
var Units = []string{"s", "ms", "us", "ns"}

// ToMillis converts value, expressed in unit, to milliseconds.
func ToMillis(value float64, unit string) (float64, error) {
	switch unit {
	case "s":
		return value * 1000, nil
	case "ms":
		return value, nil
	case "us":
		return value / 1000, nil
	case "ns":
		return value / 1e6, nil
	}
	return 0, &UnknownUnitError{unit}
}

// FormatMillis formats a latency given in milliseconds using the
// largest wrk2 unit that keeps the value at or above 1, with two
// digits after the decimal point, mirroring wrk2's own output. For
// example, 0.5 formats as "500.00us" and 2000 as "2.00s".
func FormatMillis(ms float64) string {
	unit := "ms"
	v := ms
	switch a := abs(ms); {
	case a == 0:
	case a >= 1000:
		unit, v = "s", ms/1000
	case a < 1.0/1000:
		unit, v = "ns", ms*1e6
	case a < 1:
		unit, v = "us", ms*1000
	}
	buf := make([]byte, 0, 16)
	buf = strconv.AppendFloat(buf, v, 'f', 2, 64)
	buf = append(buf, unit...)
	return string(buf)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
