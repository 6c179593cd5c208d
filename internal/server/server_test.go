// internal/server/server_test.go
package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deuter-core/adduct"
	"deuter-core/deuteration"
	"deuter-core/formula"
	"deuter/internal/config"
	"deuter/pkg/api"
)

const testFWHM = 0.05

func synthScan(t *testing.T, weights []float64) (mz, signal []float64) {
	t.Helper()

	base, err := formula.ParseDeuterated("CD4")
	require.NoError(t, err)
	ad, err := adduct.Parse("[M]+")
	require.NoError(t, err)
	patterns, err := deuteration.ComputePatterns(base, ad)
	require.NoError(t, err)

	sigma := testFWHM / 2.354820045
	for x := 15.0; x <= 22.5; x += 0.005 {
		var y float64
		for k, w := range weights {
			for _, pk := range patterns[k].Peaks {
				d := (x - pk.MZ) / sigma
				y += w * pk.Abundance * math.Exp(-0.5*d*d)
			}
		}
		mz = append(mz, x)
		signal = append(signal, y)
	}
	return mz, signal
}

func post(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(config.Default())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAdducts(t *testing.T) {
	srv := New(config.Default())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/adducts", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Adducts []string `json:"adducts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, adduct.CommonAdducts, body.Adducts)
}

func TestCalculate(t *testing.T) {
	srv := New(config.Default())
	mz, signal := synthScan(t, []float64{0, 0, 0, 250, 750})

	rec := post(t, srv, CalculateRequest{
		Formula: "CD4", Adduct: "[M]+", MZ: mz, Signal: signal,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var res api.ResultV1
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), res.ID)
	assert.Equal(t, "CD4", res.Formula)
	assert.Equal(t, 4, res.DeuteriumCount)
	assert.InDelta(t, 93.75, res.DeuterationPct, 0.5)
	assert.Nil(t, res.Plot)
}

func TestCalculateWithPlot(t *testing.T) {
	srv := New(config.Default())
	mz, signal := synthScan(t, []float64{0, 0, 0, 250, 750})

	rec := post(t, srv, CalculateRequest{
		Formula: "CD4", Adduct: "[M]+", MZ: mz, Signal: signal, IncludePlot: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res api.ResultV1
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Plot)
	assert.NotEmpty(t, res.Plot.Composite)
	assert.Len(t, res.Plot.Measured, len(res.Plot.MZ))
}

func TestCalculateRequestIDPassthrough(t *testing.T) {
	srv := New(config.Default())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestCalculateErrors(t *testing.T) {
	srv := New(config.Default())
	mz, signal := synthScan(t, []float64{0, 0, 0, 0, 1000})

	t.Run("missing formula", func(t *testing.T) {
		rec := post(t, srv, map[string]any{"mz": mz, "signal": signal})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad adduct", func(t *testing.T) {
		rec := post(t, srv, CalculateRequest{Formula: "CD4", Adduct: "nope", MZ: mz, Signal: signal})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no deuterium", func(t *testing.T) {
		rec := post(t, srv, CalculateRequest{Formula: "CH4", Adduct: "[M]+", MZ: mz, Signal: signal})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad cutoff", func(t *testing.T) {
		rec := post(t, srv, CalculateRequest{Formula: "CD4", Adduct: "[M]+", MZ: mz, Signal: signal, Cutoff: "Dfour"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("mismatched arrays", func(t *testing.T) {
		rec := post(t, srv, CalculateRequest{Formula: "CD4", Adduct: "[M]+", MZ: mz[:10], Signal: signal})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var e ErrorV1
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
		assert.NotEmpty(t, e.Error)
		assert.NotEmpty(t, e.ID)
	})
}
