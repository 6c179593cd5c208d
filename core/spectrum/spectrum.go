// core/spectrum/spectrum.go
// Measured mass spectra and the preprocessing steps applied before
// deconvolution. A Spectrum is never mutated in place: every operation
// returns a fresh copy with a bumped Version, so callers can hold earlier
// stages for plotting or diffing.

package spectrum

import (
	"errors"
	"fmt"
	"sort"
)

// Spectrum is a pair of equal-length, m/z-ascending arrays.
type Spectrum struct {
	MZ      []float64
	Signal  []float64
	Version int
}

// New validates and wraps raw (m/z, signal) arrays. Input that is not sorted
// by m/z is rejected rather than silently reordered: column mix-ups upstream
// show up here.
func New(mz, signal []float64) (Spectrum, error) {
	if len(mz) != len(signal) {
		return Spectrum{}, fmt.Errorf("spectrum: %d m/z values vs %d signals", len(mz), len(signal))
	}
	if len(mz) == 0 {
		return Spectrum{}, errors.New("spectrum: no data points")
	}
	if !sort.Float64sAreSorted(mz) {
		return Spectrum{}, errors.New("spectrum: m/z values not ascending")
	}
	return Spectrum{MZ: mz, Signal: signal}, nil
}

func (s Spectrum) Len() int { return len(s.MZ) }

// next copies the arrays for a derived spectrum.
func (s Spectrum) next() Spectrum {
	return Spectrum{
		MZ:      append([]float64(nil), s.MZ...),
		Signal:  append([]float64(nil), s.Signal...),
		Version: s.Version + 1,
	}
}

// windowIndices returns the half-open index range covering [lo, hi].
func (s Spectrum) windowIndices(lo, hi float64) (int, int) {
	i := sort.SearchFloat64s(s.MZ, lo)
	j := sort.SearchFloat64s(s.MZ, hi)
	for j < len(s.MZ) && s.MZ[j] <= hi {
		j++
	}
	return i, j
}

// Window returns the sub-spectrum with lo <= m/z <= hi (copied).
func (s Spectrum) Window(lo, hi float64) Spectrum {
	i, j := s.windowIndices(lo, hi)
	return Spectrum{
		MZ:      append([]float64(nil), s.MZ[i:j]...),
		Signal:  append([]float64(nil), s.Signal[i:j]...),
		Version: s.Version,
	}
}

// MaxSignalAt returns the m/z of the strongest signal inside [lo, hi] and
// the number of points considered.
func (s Spectrum) MaxSignalAt(lo, hi float64) (float64, int) {
	i, j := s.windowIndices(lo, hi)
	if i >= j {
		return 0, 0
	}
	best := i
	for k := i + 1; k < j; k++ {
		if s.Signal[k] > s.Signal[best] {
			best = k
		}
	}
	return s.MZ[best], j - i
}

// Align shifts every m/z so the strongest peak within width of target lands
// on target. With fewer than 2 points in the search window it degrades to a
// no-op and reports ok=false, leaving confidence handling to the caller.
// Please calibrate your instrument instead of relying on this.
func (s Spectrum) Align(target, width float64) (Spectrum, float64, bool) {
	peak, n := s.MaxSignalAt(target-width, target+width)
	if n < 2 {
		return s, 0, false
	}
	shift := target - peak
	out := s.next()
	for i := range out.MZ {
		out.MZ[i] += shift
	}
	return out, shift, true
}

// SubtractBaseline subtracts the given percentile of the signal inside
// [lo, hi] from every point in that window, clipping at zero. The percentile
// is the lower order statistic (no interpolation), which makes the operation
// idempotent: re-applying subtracts the new window percentile, which is zero.
// Degrades to a no-op with ok=false on an empty window.
func (s Spectrum) SubtractBaseline(lo, hi, percentile float64) (Spectrum, float64, bool) {
	i, j := s.windowIndices(lo, hi)
	if i >= j {
		return s, 0, false
	}
	base := Percentile(s.Signal[i:j], percentile)
	if base <= 0 {
		return s, 0, true
	}
	out := s.next()
	for k := i; k < j; k++ {
		out.Signal[k] -= base
		if out.Signal[k] < 0 {
			out.Signal[k] = 0
		}
	}
	return out, base, true
}

// Percentile returns the p-th percentile of values as the lower order
// statistic: sorted[floor(p/100 * (len-1))].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(p / 100.0 * float64(len(sorted)-1))
	return sorted[idx]
}
