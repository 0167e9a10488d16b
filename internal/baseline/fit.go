// Package baseline estimates the background noise floor of a spectrum from its
// out-of-band samples and removes it.
package baseline

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/radiometer/internal/spectrum"
)

// DefaultDegree is the polynomial degree of the noise model.
const DefaultDegree = 3

var (
	// ErrInvalidDegree is returned for a negative polynomial degree.
	ErrInvalidDegree = errors.New("polynomial degree must not be negative")

	// ErrIllConditioned is returned when the least-squares system cannot be solved.
	ErrIllConditioned = errors.New("noise model fit is ill-conditioned")
)

// InsufficientDataError is returned when there are fewer distinct edge
// frequencies than coefficients to fit.
type InsufficientDataError struct {
	Points int // Number of distinct frequencies available
	Degree int // Requested polynomial degree
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("fitting a degree %d polynomial needs at least %d edge points, got %d",
		e.Degree, e.Degree+1, e.Points)
}

// Model is a least-squares polynomial noise floor.
//
// The polynomial is solved in the normalised variable t = (f - center) / scale,
// which maps the fitted frequency range onto [-1, 1]. Raw MHz values raised to
// the third power would otherwise make the system badly conditioned.
type Model struct {
	degree int
	center float64
	scale  float64
	coef   []float64 // ascending powers of t
	rms    float64
	points int
}

// Fit fits a polynomial of the given degree through points, minimising the sum
// of squared temperature residuals.
func Fit(points spectrum.Series, degree int) (*Model, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}

	freqs := points.Frequencies()
	temps := points.Temperatures()

	if n := countDistinct(freqs); n < degree+1 {
		return nil, &InsufficientDataError{Points: n, Degree: degree}
	}

	lo, hi := floats.Min(freqs), floats.Max(freqs)
	m := Model{
		degree: degree,
		center: (lo + hi) / 2,
		scale:  (hi - lo) / 2,
		points: len(points),
	}
	if m.scale == 0 {
		m.scale = 1
	}

	cols := degree + 1
	a := mat.NewDense(len(freqs), cols, nil)
	for i, f := range freqs {
		t := m.normalize(f)
		v := 1.0
		for j := 0; j < cols; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(len(temps), temps)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllConditioned, err)
	}

	m.coef = make([]float64, cols)
	for j := range m.coef {
		m.coef[j] = x.AtVec(j)
	}

	var sq float64
	for i, f := range freqs {
		r := temps[i] - m.Eval(f)
		sq += r * r
	}
	m.rms = math.Sqrt(sq / float64(len(freqs)))

	return &m, nil
}

// Degree returns the polynomial degree of the model.
func (m *Model) Degree() int {
	return m.degree
}

// Points returns the number of samples the model was fitted to.
func (m *Model) Points() int {
	return m.points
}

// RMS returns the root mean square residual over the fitted samples.
func (m *Model) RMS() float64 {
	return m.rms
}

// Eval returns the modelled noise temperature at frequency f (MHz). Values far
// outside the fitted range are extrapolated without any accuracy guarantee.
func (m *Model) Eval(f float64) float64 {
	t := m.normalize(f)

	// Horner
	var v float64
	for j := len(m.coef) - 1; j >= 0; j-- {
		v = v*t + m.coef[j]
	}
	return v
}

// Evaluate samples the model at every frequency of s.
func (m *Model) Evaluate(s spectrum.Series) spectrum.Series {
	out := make(spectrum.Series, len(s))
	for i, p := range s {
		out[i] = spectrum.Point{Frequency: p.Frequency, Temperature: m.Eval(p.Frequency)}
	}
	return out
}

// Coefficients returns the polynomial coefficients in ascending powers of the
// raw frequency in MHz, so that T(f) = c[0] + c[1]*f + c[2]*f^2 + ...
//
// The expansion loses precision for high degrees and large frequencies; use
// Eval to compute model values.
func (m *Model) Coefficients() []float64 {
	raw := make([]float64, len(m.coef))

	// a_k * ((f - c) / s)^k expanded with the binomial theorem
	for k, a := range m.coef {
		ak := a / math.Pow(m.scale, float64(k))
		binom := 1.0 // C(k, j)
		for j := 0; j <= k; j++ {
			raw[j] += ak * binom * math.Pow(-m.center, float64(k-j))
			binom = binom * float64(k-j) / float64(j+1)
		}
	}
	return raw
}

func (m *Model) String() string {
	return fmt.Sprintf("degree=%d points=%d rms=%.4fK coefficients=%v", m.degree, m.points, m.rms, m.Coefficients())
}

func (m *Model) normalize(f float64) float64 {
	return (f - m.center) / m.scale
}

func countDistinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
