// core/deconv/nnls.go
// Lawson-Hanson active-set NNLS on the normal equations, with a ridge
// fallback for singular or under-determined systems. Problem sizes here are
// tiny (states+1 coefficients, at most a few hundred sample points), so dense
// slice arithmetic with partial-pivot elimination is plenty.

package deconv

import "math"

// solveNonNegative minimises ||A*x - y||2 subject to x >= 0, where A's
// columns are the basis vectors. The second return is true when the result
// came from the regularised fallback and should be treated as low confidence.
func solveNonNegative(bases [][]float64, y []float64) ([]float64, bool) {
	m := len(bases)
	ata := make([][]float64, m)
	atb := make([]float64, m)
	for i := 0; i < m; i++ {
		ata[i] = make([]float64, m)
		for j := 0; j <= i; j++ {
			d := dot(bases[i], bases[j])
			ata[i][j] = d
			ata[j][i] = d
		}
		atb[i] = dot(bases[i], y)
	}

	if x, ok := nnls(ata, atb); ok {
		return x, false
	}
	return ridge(ata, atb), true
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// nnls is the classic Lawson-Hanson loop over passive set P. Returns ok=false
// if a passive subsystem turns out singular (degenerate bases).
func nnls(ata [][]float64, atb []float64) ([]float64, bool) {
	m := len(atb)
	x := make([]float64, m)
	passive := make([]bool, m)

	tol := 0.0
	for i := 0; i < m; i++ {
		if ata[i][i] > tol {
			tol = ata[i][i]
		}
	}
	tol *= 1e-12

	w := make([]float64, m)
	for iter := 0; iter < 3*m+10; iter++ {
		// Gradient of the active (zero) coefficients.
		for i := 0; i < m; i++ {
			w[i] = atb[i] - dot(ata[i], x)
		}
		j, wmax := -1, tol
		for i := 0; i < m; i++ {
			if !passive[i] && w[i] > wmax {
				j, wmax = i, w[i]
			}
		}
		if j < 0 {
			return x, true // KKT satisfied
		}
		passive[j] = true

		for {
			z, ok := solvePassive(ata, atb, passive)
			if !ok {
				return nil, false
			}
			neg := false
			alpha := 1.0
			for i := 0; i < m; i++ {
				if passive[i] && z[i] <= 0 {
					neg = true
					if a := x[i] / (x[i] - z[i]); a < alpha {
						alpha = a
					}
				}
			}
			if !neg {
				for i := 0; i < m; i++ {
					if passive[i] {
						x[i] = z[i]
					} else {
						x[i] = 0
					}
				}
				break
			}
			for i := 0; i < m; i++ {
				if passive[i] {
					x[i] += alpha * (z[i] - x[i])
					if x[i] <= tol {
						x[i] = 0
						passive[i] = false
					}
				}
			}
		}
	}
	return x, true
}

// solvePassive solves the normal equations restricted to the passive set by
// Gaussian elimination with partial pivoting. z has zeros outside the set.
func solvePassive(ata [][]float64, atb []float64, passive []bool) ([]float64, bool) {
	var idx []int
	for i, p := range passive {
		if p {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	a := make([][]float64, n)
	b := make([]float64, n)
	for r, i := range idx {
		a[r] = make([]float64, n)
		for c, j := range idx {
			a[r][c] = ata[i][j]
		}
		b[r] = atb[i]
	}

	sol, ok := solveDense(a, b)
	if !ok {
		return nil, false
	}
	z := make([]float64, len(passive))
	for r, i := range idx {
		z[i] = sol[r]
	}
	return z, true
}

// solveDense is in-place partial-pivot elimination; a and b are clobbered.
func solveDense(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		piv := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[piv][col]) {
				piv = r
			}
		}
		if math.Abs(a[piv][col]) < 1e-300 {
			return nil, false
		}
		a[col], a[piv] = a[piv], a[col]
		b[col], b[piv] = b[piv], b[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		s := b[r]
		for c := r + 1; c < n; c++ {
			s -= a[r][c] * x[c]
		}
		x[r] = s / a[r][r]
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
	}
	return x, true
}

// ridge solves (AtA + lambda*I) x = Atb with negatives clipped to zero,
// growing lambda until the system solves. lambda starts at 1e-6 of the mean
// diagonal, so well-conditioned problems are barely perturbed.
func ridge(ata [][]float64, atb []float64) []float64 {
	m := len(atb)
	trace := 0.0
	for i := 0; i < m; i++ {
		trace += ata[i][i]
	}
	lambda := 1e-6 * trace / float64(m)
	if lambda <= 0 {
		lambda = 1e-12
	}
	for try := 0; try < 12; try++ {
		a := make([][]float64, m)
		b := make([]float64, m)
		for i := 0; i < m; i++ {
			a[i] = append([]float64(nil), ata[i]...)
			a[i][i] += lambda
			b[i] = atb[i]
		}
		if x, ok := solveDense(a, b); ok {
			for i := range x {
				if x[i] < 0 {
					x[i] = 0
				}
			}
			return x
		}
		lambda *= 10
	}
	// Pathological input; report no signal rather than garbage.
	return make([]float64, m)
}
