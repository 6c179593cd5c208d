// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deuter-core/adduct"
	"deuter-core/deuteration"
	"deuter-core/formula"
	"deuter/internal/app"
	"deuter/internal/batchapp"
	"deuter/pkg/api"
)

// writeScan synthesizes a C2D6OS (DMSO-d6) spectrum and writes it as a
// semicolon-delimited export with a two-line header, the kind of file the
// column guesser has to cope with.
func writeScan(t *testing.T, dir, name string, weights []float64) string {
	t.Helper()

	base, err := formula.ParseDeuterated("C2D6OS")
	require.NoError(t, err)
	ad, err := adduct.Parse("[M+H]+")
	require.NoError(t, err)
	patterns, err := deuteration.ComputePatterns(base, ad)
	require.NoError(t, err)
	require.Len(t, patterns, len(weights))

	sigma := 0.05 / 2.354820045
	lo := patterns[0].Mono - 2.0
	hi := patterns[len(patterns)-1].Mono + 2.5

	var sb strings.Builder
	sb.WriteString("exported by acquisition software\n")
	sb.WriteString("m/z;intensity (cps)\n")
	for x := lo; x <= hi; x += 0.004 {
		var y float64
		for k, w := range weights {
			for _, pk := range patterns[k].Peaks {
				d := (x - pk.MZ) / sigma
				y += w * pk.Abundance * math.Exp(-0.5*d*d)
			}
		}
		fmt.Fprintf(&sb, "%.4f;%.6f\n", x, y)
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

// Six-site weights, heavily deuterated with a dead D0-D2 run.
var dmsoWeights = []float64{0, 0, 0, 20, 80, 250, 650}

func dmsoExpectedPct() float64 {
	var total, weighted float64
	for k, w := range dmsoWeights {
		total += w
		weighted += float64(k) / 6.0 * w
	}
	return 100 * weighted / total
}

func TestSingleAndBatchAgree(t *testing.T) {
	dir := t.TempDir()
	scan := writeScan(t, dir, "dmso.csv", dmsoWeights)
	want := dmsoExpectedPct()

	// Single-sample command, JSON out.
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"C2D6OS", scan, "--adduct", "[M+H]+", "--output", "json"}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())

	var single api.ResultV1
	require.NoError(t, json.Unmarshal(out.Bytes(), &single))
	assert.Equal(t, "C2D6OS", single.Formula)
	assert.Equal(t, 6, single.DeuteriumCount)
	assert.Equal(t, 3, single.Cutoff)
	assert.InDelta(t, want, single.DeuterationPct, 0.5)

	// Same sample through the batch command.
	manifest := filepath.Join(dir, "samples.tsv")
	require.NoError(t, os.WriteFile(manifest,
		[]byte("dmso\tC2D6OS\t[M+H]+\t"+scan+"\n"), 0o644))

	out.Reset()
	errBuf.Reset()
	code = batchapp.Run([]string{manifest}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())

	var batched api.ResultV1
	require.NoError(t, json.Unmarshal(out.Bytes(), &batched))
	assert.Equal(t, "dmso", batched.ID)
	assert.InDelta(t, single.DeuterationPct, batched.DeuterationPct, 1e-9)
	assert.InDelta(t, single.UncertaintyPct, batched.UncertaintyPct, 1e-9)
}

func TestAutoAdductMatchesExplicit(t *testing.T) {
	dir := t.TempDir()
	scan := writeScan(t, dir, "dmso.csv", dmsoWeights)

	var explicit, auto bytes.Buffer
	code := app.Run([]string{"C2D6OS", scan, "--adduct", "[M+H]+", "--output", "json"}, &explicit, new(bytes.Buffer))
	require.Equal(t, 0, code)
	code = app.Run([]string{"C2D6OS", scan, "--output", "json"}, &auto, new(bytes.Buffer))
	require.Equal(t, 0, code)

	var re, ra api.ResultV1
	require.NoError(t, json.Unmarshal(explicit.Bytes(), &re))
	require.NoError(t, json.Unmarshal(auto.Bytes(), &ra))
	assert.Equal(t, "[M+H]+", ra.Adduct)
	assert.InDelta(t, re.DeuterationPct, ra.DeuterationPct, 1e-9)
}

func TestCancelledContextExitsNonzero(t *testing.T) {
	dir := t.TempDir()
	scan := writeScan(t, dir, "dmso.csv", dmsoWeights)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := app.RunContext(ctx, []string{"C2D6OS", scan, "--adduct", "[M+H]+"},
		new(bytes.Buffer), new(bytes.Buffer))
	assert.NotEqual(t, 0, code)
}
