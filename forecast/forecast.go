// Package forecast rolls a pre-trained sales model forward month by month. Each product's
// last observed row seeds the rollout and every step feeds its own prediction back in as
// the lag features of the next step.
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/models"
	"github.com/aouyang1/go-salesforecaster/salesdata"
)

var (
	ErrNoFeatureData     = errors.New("no feature data to forecast from")
	ErrNoPredictions     = errors.New("no predictions produced")
	ErrInvalidPrediction = errors.New("model returned a non-finite prediction")
	ErrModelPanic        = errors.New("model panicked during prediction")
)

// Row is the forecast of a single product for a future month
type Row struct {
	Product         string           `json:"product_name"`
	Period          salesdata.Period `json:"period"`
	Predicted       float64          `json:"predicted_quantity"`
	CILower         float64          `json:"CI_lower"`
	CIUpper         float64          `json:"CI_upper"`
	ConfidenceLevel string           `json:"confidence_level"`
}

// RowError records a product and month that could not be predicted
type RowError struct {
	Product string
	Period  salesdata.Period
	Step    int
	Err     error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("unable to predict %s at %s (step %d), %v", e.Product, e.Period, e.Step, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Result holds the forecast rows ordered by product and period, the residual standard
// deviation used for every confidence band and the rows that failed to predict.
type Result struct {
	Rows     []Row       `json:"rows"`
	StdPred  float64     `json:"std_pred"`
	Failures []*RowError `json:"-"`
}

// ForProduct returns the forecast rows of a single product
func (r *Result) ForProduct(product string) []Row {
	if r == nil {
		return nil
	}
	var rows []Row
	for _, row := range r.Rows {
		if row.Product == product {
			rows = append(rows, row)
		}
	}
	return rows
}

// Forecast predicts opt.Horizon months past the last observed month of every product in the
// table. A failed prediction skips that product and month and the rollout continues; the
// call only fails if no prediction succeeds at all.
func Forecast(table *feature.Table, m models.Predictor, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, models.ErrModelUnavailable
	}
	if table.Len() == 0 {
		return nil, ErrNoFeatureData
	}

	std, err := ResidualStdDev(table, m)
	if err != nil {
		slog.Warn("unable to compute confidence interval, using zero width", "error", err.Error())
		std = 0
	}
	band := opt.ZScore * std

	seeds := table.Seeds()
	states := make([]*lagState, len(seeds))
	for i, seed := range seeds {
		states[i] = newLagState(seed)
	}

	res := &Result{
		Rows:    make([]Row, 0, len(seeds)*opt.Horizon),
		StdPred: std,
	}
	for step := 1; step <= opt.Horizon; step++ {
		for i, seed := range seeds {
			st := states[i]
			period := seed.Period.AddMonths(step)

			pred, err := predict(m, st.vector(step, period))
			if err != nil {
				rowErr := &RowError{Product: seed.Product, Period: period, Step: step, Err: err}
				slog.Error("unable to predict", "product", seed.Product, "period", period.String(), "error", err.Error())
				res.Failures = append(res.Failures, rowErr)
				st.skip(step)
				continue
			}

			pred = math.Max(pred, 0)
			st.record(step, pred)
			res.Rows = append(res.Rows, Row{
				Product:         seed.Product,
				Period:          period,
				Predicted:       pred,
				CILower:         math.Max(pred-band, 0),
				CIUpper:         pred + band,
				ConfidenceLevel: opt.ConfidenceLevel,
			})
		}
	}

	if len(res.Rows) == 0 {
		errs := []error{ErrNoPredictions}
		for _, f := range res.Failures {
			errs = append(errs, f)
		}
		slog.Error("no predictions were created", "failures", len(res.Failures))
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		if res.Rows[i].Product != res.Rows[j].Product {
			return res.Rows[i].Product < res.Rows[j].Product
		}
		return res.Rows[i].Period.Before(res.Rows[j].Period)
	})

	slog.Debug("future predictions completed",
		"products", len(seeds),
		"horizon", opt.Horizon,
		"rows", len(res.Rows),
		"failures", len(res.Failures),
		"std_pred", std,
	)
	return res, nil
}

// predict runs a single model prediction, converting panics and non-finite output to errors
func predict(m models.Predictor, v feature.Vector) (pred float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred, err = 0, fmt.Errorf("%v, %w", r, ErrModelPanic)
		}
	}()

	pred, err = m.Predict(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return 0, fmt.Errorf("got %v, %w", pred, ErrInvalidPrediction)
	}
	return pred, nil
}
