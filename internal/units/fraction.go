// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package units is the physical-unit-aware algebra engine: it
// parses unit-literal expressions such as "nS/ms" or "mV", canonicalizes
// them into a rational-exponent vector over the seven SI base dimensions
// plus a scale factor, and implements the arithmetic laws (+, -, *, /, **)
// that the type checker uses to unify and convert between them.
package units

import "fmt"

// Fraction is a reduced rational exponent. Most unit exponents in practice
// are small integers, but sqrt() and other built-ins can introduce halves,
// so dimension exponents are carried as fractions rather than ints
// end-to-end.
type Fraction struct {
	Num, Den int64
}

// Int returns the fraction n/1.
func Int(n int64) Fraction { return Fraction{Num: n, Den: 1} }

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// Reduce returns f in lowest terms with a positive denominator.
func (f Fraction) Reduce() Fraction {
	if f.Den == 0 {
		return f
	}
	if f.Den < 0 {
		f.Num, f.Den = -f.Num, -f.Den
	}
	if f.Num == 0 {
		return Fraction{0, 1}
	}
	g := gcd(f.Num, f.Den)
	return Fraction{f.Num / g, f.Den / g}
}

func (f Fraction) Add(o Fraction) Fraction {
	return Fraction{f.Num*o.Den + o.Num*f.Den, f.Den * o.Den}.Reduce()
}

func (f Fraction) Sub(o Fraction) Fraction {
	return Fraction{f.Num*o.Den - o.Num*f.Den, f.Den * o.Den}.Reduce()
}

func (f Fraction) MulInt(n int64) Fraction {
	return Fraction{f.Num * n, f.Den}.Reduce()
}

func (f Fraction) MulFrac(o Fraction) Fraction {
	return Fraction{f.Num * o.Num, f.Den * o.Den}.Reduce()
}

// IsZero reports whether the fraction reduces to 0.
func (f Fraction) IsZero() bool {
	r := f.Reduce()
	return r.Num == 0
}

// IsInteger reports whether the fraction has denominator 1 after reduction.
func (f Fraction) IsInteger() bool {
	return f.Reduce().Den == 1
}

func (f Fraction) String() string {
	r := f.Reduce()
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
