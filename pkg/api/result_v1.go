// pkg/api/result_v1.go
package api

// ResultV1 is the stable JSON schema for one deuteration calculation.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ResultV1 struct {
	ID             string  `json:"id,omitempty"` // batch row / request id
	Formula        string  `json:"formula"`
	Adduct         string  `json:"adduct"`
	MZ             float64 `json:"mz"`        // neutral monoisotopic mass of M
	AdductMZ       float64 `json:"adduct_mz"` // observed m/z, fully deuterated
	DeuteriumCount int     `json:"deuterium_count"`
	Cutoff         int     `json:"cutoff"` // lowest included state
	DeuterationPct float64 `json:"deuteration_pct"`
	UncertaintyPct float64 `json:"uncertainty_pct"`
	Residual       float64 `json:"residual"`
	AlignShift     float64 `json:"align_shift,omitempty"`
	BaselineLevel  float64 `json:"baseline_level,omitempty"`

	LowConfidence bool     `json:"low_confidence,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`

	States []StateV1 `json:"states"` // all states 0..n
	Plot   *PlotV1   `json:"plot,omitempty"`
}

// StateV1 describes one deuteration state Dk.
type StateV1 struct {
	State       int     `json:"state"` // k
	MZ          float64 `json:"mz"`    // principal-isotope m/z
	Intensity   float64 `json:"intensity"`
	Probability float64 `json:"probability"` // 0 when excluded
	Included    bool    `json:"included"`
}

// PlotV1 carries the arrays a downstream plotting layer needs: the measured
// window, the reconstructed composite, and the theoretical per-state lines.
type PlotV1 struct {
	MZ        []float64 `json:"mz"`
	Measured  []float64 `json:"measured"`
	Composite []float64 `json:"composite"`
	Peaks     []PeakV1  `json:"peaks"`
}

// PeakV1 is one theoretical isotope line of one state.
type PeakV1 struct {
	State     int     `json:"state"`
	MZ        float64 `json:"mz"`
	Abundance float64 `json:"abundance"`
}
