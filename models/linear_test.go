package models

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows(t *testing.T) []feature.Row {
	t.Helper()
	records := []salesdata.Record{
		salesdata.NewRecord(2024, time.January, "a", 10),
		salesdata.NewRecord(2024, time.February, "a", 20),
		salesdata.NewRecord(2024, time.March, "a", 30),
		salesdata.NewRecord(2024, time.January, "b", 3),
	}
	tbl, _, err := feature.BuildRecords(records, nil)
	require.Nil(t, err)
	return tbl.Rows
}

func TestNewLinear(t *testing.T) {
	testData := map[string]struct {
		model LinearModel
		coef  []float64
		err   error
	}{
		"empty": {
			coef: make([]float64, feature.NumFeatures),
		},
		"lags": {
			model: LinearModel{
				Intercept: 1.5,
				Coefficients: map[string]float64{
					feature.LabelLag1: 0.5,
					feature.LabelMA6:  0.25,
				},
			},
			coef: []float64{0, 0, 0, 0, 0, 0.5, 0, 0, 0, 0.25, 0},
		},
		"unknown feature": {
			model: LinearModel{
				Coefficients: map[string]float64{"lag_12": 1},
			},
			err: ErrUnknownFeature,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			l, err := NewLinear(td.model)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.model.Intercept, l.Intercept())
			assert.Equal(t, td.coef, l.Coef())
		})
	}
}

func TestLinearPredict(t *testing.T) {
	l, err := NewLinear(LinearModel{
		Intercept: 2,
		Coefficients: map[string]float64{
			feature.LabelLag1:  0.5,
			feature.LabelMA3:   0.5,
			feature.LabelMonth: 1,
		},
	})
	require.Nil(t, err)

	rows := testRows(t)
	expected := make([]float64, len(rows))
	for i, r := range rows {
		expected[i] = 2 + 0.5*r.Lag1 + 0.5*r.MA3 + r.Month
		pred, err := l.Predict(r.Vector)
		require.Nil(t, err)
		assert.InDelta(t, expected[i], pred, 1e-9)
	}

	batch, err := l.PredictBatch(feature.Matrix(rows))
	require.Nil(t, err)
	assert.InDeltaSlice(t, expected, batch, 1e-9)

	_, err = l.PredictBatch(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)

	var missing *Linear
	_, err = missing.Predict(rows[0].Vector)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLinearModelEq(t *testing.T) {
	l, err := NewLinear(LinearModel{
		Intercept: 1,
		Coefficients: map[string]float64{
			feature.LabelLag2: -0.25,
			feature.LabelLag1: 0.75,
		},
	})
	require.Nil(t, err)
	assert.Equal(t, "y ~ 1.00+0.75*lag_1+-0.25*lag_2", l.ModelEq())

	var buf bytes.Buffer
	require.Nil(t, l.TablePrint(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "intercept")
	assert.Contains(t, lines[2], "lag_1")
	assert.Contains(t, lines[3], "lag_2")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrModelUnavailable)

	bad := filepath.Join(dir, "bad.json")
	require.Nil(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrModelUnavailable)

	unknown := filepath.Join(dir, "unknown.json")
	require.Nil(t, os.WriteFile(unknown, []byte(`{"coefficients": {"price": 1}}`), 0o644))
	_, err = Load(unknown)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, ErrUnknownFeature)

	l, err := NewLinear(LinearModel{
		Intercept:    3,
		Coefficients: map[string]float64{feature.LabelLag1: 0.9},
	})
	require.Nil(t, err)

	path := filepath.Join(dir, "model.json")
	require.Nil(t, l.Save(path))

	loaded, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, l, loaded)
	assert.Equal(t, l.Model(), loaded.Model())
}

func TestPredictRows(t *testing.T) {
	rows := testRows(t)

	calls := 0
	fn := PredictorFunc(func(v feature.Vector) (float64, error) {
		calls++
		return v.Lag1 * 2, nil
	})
	res, err := PredictRows(fn, rows)
	require.Nil(t, err)
	assert.Equal(t, len(rows), calls)
	for i, r := range rows {
		assert.Equal(t, r.Lag1*2, res[i])
	}

	errBoom := errors.New("boom")
	failing := PredictorFunc(func(v feature.Vector) (float64, error) {
		return 0, errBoom
	})
	_, err = PredictRows(failing, rows)
	assert.ErrorIs(t, err, errBoom)

	_, err = PredictRows(nil, rows)
	assert.ErrorIs(t, err, ErrModelUnavailable)

	res, err = PredictRows(fn, nil)
	assert.Nil(t, err)
	assert.Nil(t, res)
}
