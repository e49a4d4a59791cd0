// Package analysis extracts frequency content from run traces. A coupled
// system's energy exchange shows up as spectral peaks; the dominant
// frequency is the quickest sanity check that an oscillatory scenario
// oscillates at the rate the physics predicts.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// SpectrumPoint is one bin of a one-sided power spectrum.
type SpectrumPoint struct {
	Frequency float64
	Power     float64
}

// Spectrum computes the one-sided power spectrum of a uniformly sampled
// series. The mean is removed first so the DC bin does not swamp the
// physical peaks.
func Spectrum(series []float64, dt float64) []SpectrumPoint {
	n := len(series)
	if n < 4 || dt <= 0 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)

	half := n / 2
	points := make([]SpectrumPoint, half)
	df := 1.0 / (dt * float64(n))
	for i := 0; i < half; i++ {
		points[i] = SpectrumPoint{
			Frequency: float64(i) * df,
			Power:     cmplx.Abs(coeffs[i]) * cmplx.Abs(coeffs[i]) / float64(n),
		}
	}
	return points
}

// DominantFrequency returns the frequency of the strongest non-DC bin,
// or zero for a flat series.
func DominantFrequency(series []float64, dt float64) float64 {
	points := Spectrum(series, dt)
	if len(points) < 2 {
		return 0
	}

	best := 1
	for i := 2; i < len(points); i++ {
		if points[i].Power > points[best].Power {
			best = i
		}
	}
	if points[best].Power < 1e-12 {
		return 0
	}
	return points[best].Frequency
}

// PowerSeries flattens a spectrum to the power column for plotting.
func PowerSeries(points []SpectrumPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Power
	}
	return out
}

// TotalPower integrates the spectrum; by Parseval it tracks the variance
// of the input series.
func TotalPower(points []SpectrumPoint) float64 {
	sum := 0.0
	for _, p := range points {
		sum += p.Power
	}
	return sum
}

// Damping estimates an exponential decay rate from the series envelope by
// fitting log|peaks| against time. Positive means the signal is dying out.
func Damping(series []float64, dt float64) float64 {
	var times, logs []float64
	for i := 1; i < len(series)-1; i++ {
		a := math.Abs(series[i])
		if a > math.Abs(series[i-1]) && a >= math.Abs(series[i+1]) && a > 0 {
			times = append(times, float64(i)*dt)
			logs = append(logs, math.Log(a))
		}
	}
	if len(times) < 2 {
		return 0
	}

	// Least-squares slope of log-envelope vs time.
	n := float64(len(times))
	var st, sl, stt, stl float64
	for i := range times {
		st += times[i]
		sl += logs[i]
		stt += times[i] * times[i]
		stl += times[i] * logs[i]
	}
	denom := n*stt - st*st
	if denom == 0 {
		return 0
	}
	return -(n*stl - st*sl) / denom
}
