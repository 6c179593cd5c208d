// internal/output/output_test.go
package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deuter/pkg/api"
)

func sampleResult() api.ResultV1 {
	return api.ResultV1{
		Formula:        "CD4",
		Adduct:         "[M]+",
		MZ:             20.0564,
		AdductMZ:       20.0559,
		DeuteriumCount: 4,
		Cutoff:         3,
		DeuterationPct: 93.75,
		UncertaintyPct: 0.12,
		States: []api.StateV1{
			{State: 0, MZ: 16.0307},
			{State: 1, MZ: 17.0370},
			{State: 2, MZ: 18.0433},
			{State: 3, MZ: 19.0496, Intensity: 250, Probability: 0.25, Included: true},
			{State: 4, MZ: 20.0559, Intensity: 750, Probability: 0.75, Included: true},
		},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Formula          : CD4")
	assert.Contains(t, out, "Deuteration      : 93.75 % (±0.12)")
	assert.Contains(t, out, "D3               : 25.00 %")
	assert.Contains(t, out, "D4               : 75.00 %")
	assert.NotContains(t, out, "D0")
	assert.NotContains(t, out, "Confidence")
}

func TestWriteReportLowConfidence(t *testing.T) {
	r := sampleResult()
	r.LowConfidence = true
	r.Warnings = []string{"under-determined or regularised fit"}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	assert.Contains(t, buf.String(), "Confidence       : LOW")
	assert.Contains(t, buf.String(), "Warning          : under-determined")
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, sampleResult(), true))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "formula\tadduct\tstate\tmz\tintensity\tprobability\tincluded\tdeuteration_pct", lines[0])
	assert.True(t, strings.HasPrefix(lines[5], "CD4\t[M]+\tD4\t20.0559\t750\t0.750000\ttrue\t93.75"))

	buf.Reset()
	require.NoError(t, WriteTSV(&buf, sampleResult(), false))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 5)
}

func TestWriteBatchTSV(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResult()
	r.ID = "s1"
	require.NoError(t, WriteBatchTSV(&buf, r, true))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id\tformula"))
	assert.True(t, strings.HasPrefix(lines[1], "s1\tCD4\t[M]+\t4\tD3\t93.75\t0.12\t"))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var back api.ResultV1
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sampleResult(), back)
}
