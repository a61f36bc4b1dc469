// Package models defines how the forecaster talks to a pre-trained sales model along with a
// linear model implementation that can be loaded from a json file.
package models

import (
	"fmt"

	"github.com/aouyang1/go-salesforecaster/feature"
	"gonum.org/v1/gonum/mat"
)

// Predictor predicts the quantity sold from a single feature vector
type Predictor interface {
	Predict(v feature.Vector) (float64, error)
}

// BatchPredictor is implemented by models that can predict many rows at once. The design
// matrix has one row per observation and the columns in feature.Columns order.
type BatchPredictor interface {
	PredictBatch(x mat.Matrix) ([]float64, error)
}

// PredictorFunc adapts a function to the Predictor interface
type PredictorFunc func(v feature.Vector) (float64, error)

func (f PredictorFunc) Predict(v feature.Vector) (float64, error) {
	return f(v)
}

// PredictRows returns a prediction per row, using a single batch call when the model
// supports it
func PredictRows(m Predictor, rows []feature.Row) ([]float64, error) {
	if m == nil {
		return nil, ErrModelUnavailable
	}
	if len(rows) == 0 {
		return nil, nil
	}

	if bm, ok := m.(BatchPredictor); ok {
		res, err := bm.PredictBatch(feature.Matrix(rows))
		if err != nil {
			return nil, err
		}
		if len(res) != len(rows) {
			return nil, fmt.Errorf("expected %d, but got %d, %w", len(rows), len(res), ErrPredictionLen)
		}
		return res, nil
	}

	res := make([]float64, len(rows))
	for i, r := range rows {
		pred, err := m.Predict(r.Vector)
		if err != nil {
			return nil, fmt.Errorf("unable to predict %s at %s, %w", r.Product, r.Period, err)
		}
		res[i] = pred
	}
	return res, nil
}
