package forecast

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ResidualStdDev is the sample standard deviation of actual minus predicted quantity over
// every complete row of the table. Tables with fewer than two complete rows return 0.
func ResidualStdDev(table *feature.Table, m models.Predictor) (float64, error) {
	rows := table.Complete()
	if len(rows) == 0 {
		return 0, nil
	}

	residual, err := residuals(rows, m)
	if err != nil {
		return 0, err
	}
	if len(residual) < 2 {
		return 0, nil
	}

	std := stat.StdDev(residual, nil)
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return 0, nil
	}
	return std, nil
}

func residuals(rows []feature.Row, m models.Predictor) ([]float64, error) {
	predicted, err := predictRows(m, rows)
	if err != nil {
		return nil, fmt.Errorf("unable to predict training rows, %w", err)
	}

	residual := make([]float64, len(rows))
	floats.SubTo(residual, feature.Targets(rows), predicted)
	return residual, nil
}

// predictRows predicts every row, turning a model panic into ErrModelPanic
func predictRows(m models.Predictor, rows []feature.Row) (predicted []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			predicted, err = nil, fmt.Errorf("%v, %w", r, ErrModelPanic)
		}
	}()
	return models.PredictRows(m, rows)
}
