// internal/output/convert.go
package output

import (
	"deuter-core/deuteration"
	"deuter/pkg/api"
)

// ToResultV1 maps a core result onto the stable v1 wire schema.
// includePlot attaches the fit window and per-state theoretical lines.
func ToResultV1(r *deuteration.Result, includePlot bool) api.ResultV1 {
	out := api.ResultV1{
		Formula:        r.Formula,
		Adduct:         r.Adduct,
		MZ:             r.BaseMZ,
		AdductMZ:       r.AdductMZ,
		DeuteriumCount: r.N,
		Cutoff:         r.Cutoff,
		DeuterationPct: r.Deuteration,
		UncertaintyPct: r.Uncertainty,
		Residual:       r.Fit.RelativeResidual(),
		AlignShift:     r.AlignShift,
		BaselineLevel:  r.BaselineLevel,
		LowConfidence:  r.LowConfidence,
		Warnings:       r.Warnings,
		States:         make([]api.StateV1, r.N+1),
	}

	for k := 0; k <= r.N; k++ {
		out.States[k] = api.StateV1{
			State:     k,
			MZ:        r.StateMZ[k],
			Intensity: r.Intensities[k],
			Included:  k >= r.Cutoff,
		}
	}
	for i, k := range r.States {
		out.States[k].Probability = r.Probabilities[i]
	}

	if includePlot {
		plot := &api.PlotV1{
			MZ:        r.Fit.Window.MZ,
			Measured:  r.Fit.Window.Signal,
			Composite: r.Fit.Composite,
		}
		for k, pat := range r.Patterns {
			for _, pk := range pat.Peaks {
				plot.Peaks = append(plot.Peaks, api.PeakV1{State: k, MZ: pk.MZ, Abundance: pk.Abundance})
			}
		}
		out.Plot = plot
	}
	return out
}
