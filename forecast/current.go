package forecast

import (
	"fmt"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/models"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/aouyang1/go-salesforecaster/stats"
	"gonum.org/v1/gonum/floats"
)

// CurrentRow is a one step ahead prediction of an observed month
type CurrentRow struct {
	Product   string           `json:"product_name"`
	Period    salesdata.Period `json:"period"`
	Actual    float64          `json:"quantity"`
	Predicted float64          `json:"predicted_quantity"`

	// Outlier is set when the residual falls outside of the Tukey fences of all residuals
	Outlier bool `json:"outlier"`
}

// Current holds the model predictions for the observed months and how well they score
type Current struct {
	Rows     []CurrentRow `json:"rows"`
	Scores   *Scores      `json:"scores"`
	Outliers int          `json:"outliers"`
}

// PredictCurrent predicts every complete row of the table from its own features, the way the
// model was evaluated when it was trained.
func PredictCurrent(table *feature.Table, m models.Predictor) (*Current, error) {
	if m == nil {
		return nil, models.ErrModelUnavailable
	}
	rows := table.Complete()
	if len(rows) == 0 {
		return nil, ErrNoFeatureData
	}

	predicted, err := predictRows(m, rows)
	if err != nil {
		return nil, fmt.Errorf("unable to predict current periods, %w", err)
	}

	actual := feature.Targets(rows)
	scores, err := NewScores(predicted, actual)
	if err != nil {
		return nil, err
	}

	residual := make([]float64, len(rows))
	floats.SubTo(residual, actual, predicted)
	outliers, err := stats.DetectOutliers(residual, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to detect outliers, %w", err)
	}

	cur := &Current{
		Rows:     make([]CurrentRow, len(rows)),
		Scores:   scores,
		Outliers: len(outliers),
	}
	for i, r := range rows {
		cur.Rows[i] = CurrentRow{
			Product:   r.Product,
			Period:    r.Period,
			Actual:    actual[i],
			Predicted: predicted[i],
		}
	}
	for _, idx := range outliers {
		cur.Rows[idx].Outlier = true
	}
	return cur, nil
}
