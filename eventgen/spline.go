package eventgen

import "sort"

// Spline is a natural cubic interpolant over ascending x control points,
// used for the dead-time(charge) and time-walk(charge) curves (§4.H).
// With fewer than three points it degenerates to the zero spline.
type Spline struct {
	xs, ys []float64
	// second derivatives at each knot, solved once at construction.
	m []float64
}

// NewSpline builds a natural cubic spline through the given (x, y)
// control points. xs must already be ascending; fewer than three
// points yields a spline that evaluates to zero everywhere.
func NewSpline(xs, ys []float64) *Spline {
	s := &Spline{xs: xs, ys: ys}
	if len(xs) < 3 || len(xs) != len(ys) {
		s.xs = nil
		s.ys = nil
		return s
	}
	s.m = naturalSecondDerivatives(xs, ys)
	return s
}

// Eval returns the spline's value at x, clamped to the boundary knots
// outside the control range.
func (s *Spline) Eval(x float64) float64 {
	if len(s.xs) == 0 {
		return 0
	}
	n := len(s.xs)
	if x <= s.xs[0] {
		return s.ys[0]
	}
	if x >= s.xs[n-1] {
		return s.ys[n-1]
	}

	i := sort.SearchFloat64s(s.xs, x)
	if i == 0 {
		i = 1
	}
	x0, x1 := s.xs[i-1], s.xs[i]
	y0, y1 := s.ys[i-1], s.ys[i]
	m0, m1 := s.m[i-1], s.m[i]
	h := x1 - x0

	a := (x1 - x) / h
	b := (x - x0) / h
	return a*y0 + b*y1 +
		((a*a*a-a)*m0+(b*b*b-b)*m1)*(h*h)/6
}

// naturalSecondDerivatives solves the tridiagonal system for a natural
// cubic spline (second derivative zero at both endpoints).
func naturalSecondDerivatives(xs, ys []float64) []float64 {
	n := len(xs)
	alpha := make([]float64, n)
	l := make([]float64, n)
	mu := make([]float64, n)
	z := make([]float64, n)
	h := make([]float64, n-1)

	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
	}
	for i := 1; i < n-1; i++ {
		alpha[i] = 6/h[i]*(ys[i+1]-ys[i]) - 6/h[i-1]*(ys[i]-ys[i-1])
	}

	l[0] = 1
	for i := 1; i < n-1; i++ {
		l[i] = 2*(xs[i+1]-xs[i-1]) - h[i-1]*mu[i-1]
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}
	l[n-1] = 1

	m := make([]float64, n)
	for j := n - 2; j >= 0; j-- {
		m[j] = z[j] - mu[j]*m[j+1]
	}
	return m
}
