package stock

import (
	"testing"
	"time"

	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(product string, month time.Month, pred float64) forecast.Row {
	return forecast.Row{
		Product:   product,
		Period:    salesdata.NewPeriod(2024, month),
		Predicted: pred,
	}
}

func TestRecommend(t *testing.T) {
	testData := map[string]struct {
		pred        float64
		stock       float64
		factor      float64
		recommended int64
		safety      int64
	}{
		"worked example": {
			pred: 1000, stock: 50, factor: 1.1,
			recommended: 1050, safety: 100,
		},
		"stock covers demand": {
			pred: 100, stock: 500, factor: 1.5,
			recommended: 0, safety: 50,
		},
		"no safety stock": {
			pred: 42.4, stock: 0, factor: 1.0,
			recommended: 42, safety: 0,
		},
		"halves round to even": {
			pred: 25, stock: 0, factor: 1.1,
			recommended: 28, safety: 2,
		},
		"halves round to even on both sides": {
			pred: 35, stock: 0, factor: 1.1,
			recommended: 38, safety: 4,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			plan, err := Recommend(
				[]forecast.Row{row("a", time.March, td.pred)},
				map[string]float64{"a": td.stock},
				&Options{SafetyFactor: td.factor},
			)
			require.Nil(t, err)
			require.Len(t, plan.Recommendations, 1)

			rec := plan.Recommendations[0]
			assert.Equal(t, td.recommended, rec.Recommended)
			assert.Equal(t, td.safety, rec.SafetyStock)
			assert.Equal(t, td.stock, rec.CurrentStock)
		})
	}
}

func TestRecommendErrors(t *testing.T) {
	rows := []forecast.Row{row("a", time.March, 10)}

	testData := map[string]struct {
		rows    []forecast.Row
		current map[string]float64
		opt     *Options
		err     error
	}{
		"factor too small": {
			rows: rows,
			opt:  &Options{SafetyFactor: 0.9},
			err:  ErrInvalidSafetyFactor,
		},
		"factor too large": {
			rows: rows,
			opt:  &Options{SafetyFactor: 2.5},
			err:  ErrInvalidSafetyFactor,
		},
		"negative stock": {
			rows:    rows,
			current: map[string]float64{"a": -1},
			err:     ErrNegativeStock,
		},
		"no rows": {
			err: ErrNoForecast,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			plan, err := Recommend(td.rows, td.current, td.opt)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestPlanTotals(t *testing.T) {
	rows := []forecast.Row{
		row("b", time.March, 10),
		row("a", time.March, 100),
		row("a", time.April, 200),
		row("b", time.April, 20),
	}

	plan, err := Recommend(rows, map[string]float64{"a": 50}, nil)
	require.Nil(t, err)
	assert.Equal(t, DefaultSafetyFactor, plan.SafetyFactor)

	// current stock is applied to every month of the product
	a := plan.ForProduct("a")
	require.Len(t, a, 2)
	assert.Equal(t, int64(60), a[0].Recommended)
	assert.Equal(t, int64(170), a[1].Recommended)

	totals := plan.Totals()
	require.Len(t, totals, 2)
	assert.Equal(t, Total{
		Product:      "a",
		CurrentStock: 50,
		Predicted:    300,
		Recommended:  230,
		SafetyStock:  30,
	}, totals[0])
	assert.Equal(t, Total{
		Product:     "b",
		Predicted:   30,
		Recommended: 33,
		SafetyStock: 3,
	}, totals[1])
}
