// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"deuter/pkg/api"
)

// WriteReport prints the human-readable result block.
func WriteReport(w io.Writer, r api.ResultV1) error {
	if _, err := fmt.Fprintf(w,
		"Formula          : %s\nAdduct           : %s\nM/Z              : %.4f\nAdduct M/Z       : %.4f\nDeuteration      : %5.2f %% (±%.2f)\n",
		r.Formula, r.Adduct, r.MZ, r.AdductMZ, r.DeuterationPct, r.UncertaintyPct,
	); err != nil {
		return err
	}
	if r.LowConfidence {
		if _, err := fmt.Fprintln(w, "Confidence       : LOW"); err != nil {
			return err
		}
	}
	for _, warn := range r.Warnings {
		if _, err := fmt.Fprintf(w, "Warning          : %s\n", warn); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nDeuteration Ratio Spectra\n"); err != nil {
		return err
	}
	for _, s := range r.States {
		if !s.Included {
			continue
		}
		if _, err := fmt.Fprintf(w, "D%-3d             : %5.2f %%\n", s.State, s.Probability*100.0); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatchTSV prints one summary row per sample, preceded by an optional
// header line. Used by the batch command, where per-state rows would bury
// the per-sample answer.
func WriteBatchTSV(w io.Writer, r api.ResultV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, "id\tformula\tadduct\tdeuterium_count\tcutoff\tdeuteration_pct\tuncertainty_pct\tresidual\tlow_confidence"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\tD%d\t%.2f\t%.2f\t%.4g\t%t\n",
		r.ID, r.Formula, r.Adduct, r.DeuteriumCount, r.Cutoff, r.DeuterationPct, r.UncertaintyPct, r.Residual, r.LowConfidence)
	return err
}

// WriteTSV prints one row per state, preceded by an optional header line.
func WriteTSV(w io.Writer, r api.ResultV1, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, "formula\tadduct\tstate\tmz\tintensity\tprobability\tincluded\tdeuteration_pct"); err != nil {
			return err
		}
	}
	for _, s := range r.States {
		if _, err := fmt.Fprintf(w, "%s\t%s\tD%d\t%.4f\t%.6g\t%.6f\t%t\t%.2f\n",
			r.Formula, r.Adduct, s.State, s.MZ, s.Intensity, s.Probability, s.Included, r.DeuterationPct,
		); err != nil {
			return err
		}
	}
	return nil
}
