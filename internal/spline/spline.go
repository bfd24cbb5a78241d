// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spline fits cubic smoothing splines.
//
// A smoothing spline with parameter p minimizes
//
//	p Σ (y_i - f(x_i))² + (1-p) ∫ f''(x)² dx
//
// so p = 1 gives the natural cubic interpolant and p = 0 gives the
// least-squares straight line. The fit follows Reinsch's method as
// presented by de Boor, "A Practical Guide to Splines", chapter XIV.
package spline

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// A Cubic is a piecewise cubic polynomial with breaks at the fitted
// abscissae.
type Cubic struct {
	xs []float64
	// coeffs[k] holds a, b, c, d of a t³ + b t² + c t + d on
	// [xs[k], xs[k+1]], with t = x - xs[k].
	coeffs [][4]float64
}

// Smooth fits a cubic smoothing spline with smoothing parameter p,
// 0 ≤ p ≤ 1, through the points (xs[i], ys[i]). xs must be strictly
// increasing and hold at least two values.
func Smooth(xs, ys []float64, p float64) (*Cubic, error) {
	n := len(xs)
	switch {
	case n != len(ys):
		return nil, fmt.Errorf("spline: %d abscissae but %d ordinates", n, len(ys))
	case n < 2:
		return nil, fmt.Errorf("spline: need at least 2 points, have %d", n)
	case !(0 <= p && p <= 1):
		return nil, fmt.Errorf("spline: smoothing parameter %v not in [0, 1]", p)
	}
	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
		if !(h[i] > 0) {
			return nil, fmt.Errorf("spline: abscissae not strictly increasing at index %d", i+1)
		}
	}

	// Smoothed ordinates and second derivatives / 6 at the
	// breaks. With two points the spline is the line through
	// them and both stay as initialized.
	yi := append([]float64(nil), ys...)
	c := make([]float64, n)

	if m := n - 2; m > 0 {
		// qt is the m×n second divided difference operator
		// and r the m×m tridiagonal matrix of the natural
		// spline equations.
		qt := mat.NewDense(m, n, nil)
		r := mat.NewSymDense(m, nil)
		for i := 0; i < m; i++ {
			qt.Set(i, i, 1/h[i])
			qt.Set(i, i+1, -1/h[i]-1/h[i+1])
			qt.Set(i, i+2, 1/h[i+1])
			r.SetSym(i, i, 2*(h[i]+h[i+1]))
			if i+1 < m {
				r.SetSym(i, i+1, h[i+1])
			}
		}

		// Solve (6(1-p) QᵀQ + p R) u = Qᵀ y.
		var qtq, pr, a mat.SymDense
		qtq.SymOuterK(6*(1-p), qt)
		pr.ScaleSym(p, r)
		a.AddSym(&qtq, &pr)

		var b mat.VecDense
		b.MulVec(qt, mat.NewVecDense(n, append([]float64(nil), ys...)))

		var chol mat.Cholesky
		if ok := chol.Factorize(&a); !ok {
			return nil, errors.New("spline: system is not positive definite")
		}
		var u mat.VecDense
		if err := chol.SolveVecTo(&u, &b); err != nil {
			return nil, fmt.Errorf("spline: %w", err)
		}

		// yi = y - 6(1-p) Q u.
		var qu mat.VecDense
		qu.MulVec(qt.T(), &u)
		for i := range yi {
			yi[i] -= 6 * (1 - p) * qu.AtVec(i)
		}
		for i := 0; i < m; i++ {
			c[i+1] = p * u.AtVec(i)
		}
	}

	coeffs := make([][4]float64, n-1)
	for k := range coeffs {
		coeffs[k] = [4]float64{
			(c[k+1] - c[k]) / h[k],
			3 * c[k],
			(yi[k+1]-yi[k])/h[k] - h[k]*(2*c[k]+c[k+1]),
			yi[k],
		}
	}
	return &Cubic{xs: append([]float64(nil), xs...), coeffs: coeffs}, nil
}

// Eval evaluates the spline at x. Outside the fitted range it
// extends the first or last polynomial piece.
func (s *Cubic) Eval(x float64) float64 {
	// Index of the first piece whose right break lies beyond x.
	k := sort.Search(len(s.coeffs), func(i int) bool { return s.xs[i+1] > x })
	if k == len(s.coeffs) {
		k--
	}
	t := x - s.xs[k]
	co := s.coeffs[k]
	return ((co[0]*t+co[1])*t+co[2])*t + co[3]
}

// EvalAll evaluates the spline at each of xs.
func (s *Cubic) EvalAll(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = s.Eval(x)
	}
	return ys
}
