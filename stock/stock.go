// Package stock turns monthly sales forecasts into replenishment recommendations. The
// recommended order covers the predicted demand scaled by a safety factor less the stock
// already on hand.
package stock

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/shopspring/decimal"
)

const (
	DefaultSafetyFactor = 1.1
	MinSafetyFactor     = 1.0
	MaxSafetyFactor     = 2.0
)

var (
	ErrInvalidSafetyFactor = errors.New("safety factor must be between 1.0 and 2.0")
	ErrNegativeStock       = errors.New("current stock cannot be negative")
	ErrNoForecast          = errors.New("no forecast rows to recommend from")
)

type Options struct {
	SafetyFactor float64 `json:"safety_factor"`
}

func NewDefaultOptions() *Options {
	return &Options{
		SafetyFactor: DefaultSafetyFactor,
	}
}

// Validate returns a copy of the options. A nil receiver returns the default options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.SafetyFactor < MinSafetyFactor || o.SafetyFactor > MaxSafetyFactor {
		return nil, fmt.Errorf("got %.2f, %w", o.SafetyFactor, ErrInvalidSafetyFactor)
	}
	opt := *o
	return &opt, nil
}

// Recommendation is the stock to order for a product ahead of a forecasted month
type Recommendation struct {
	Product      string           `json:"product_name"`
	Period       salesdata.Period `json:"period"`
	Predicted    float64          `json:"predicted_quantity"`
	CurrentStock float64          `json:"current_stock"`
	Recommended  int64            `json:"recommended_stock"`
	SafetyStock  int64            `json:"safety_stock"`
}

// Total sums the recommendations of a single product over the forecast horizon
type Total struct {
	Product      string  `json:"product_name"`
	CurrentStock float64 `json:"current_stock"`
	Predicted    float64 `json:"predicted_quantity"`
	Recommended  int64   `json:"recommended_stock"`
	SafetyStock  int64   `json:"safety_stock"`
}

type Plan struct {
	SafetyFactor    float64          `json:"safety_factor"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Recommend computes the stock recommendation for every forecast row. current maps a
// product to the stock on hand and is applied to every forecasted month of that product;
// products without an entry have no stock.
func Recommend(rows []forecast.Row, current map[string]float64, opt *Options) (*Plan, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoForecast
	}
	for product, qty := range current {
		if qty < 0 {
			return nil, fmt.Errorf("%s has %.2f in stock, %w", product, qty, ErrNegativeStock)
		}
	}

	factor := decimal.NewFromFloat(opt.SafetyFactor)
	buffer := factor.Sub(decimal.NewFromInt(1))

	plan := &Plan{
		SafetyFactor:    opt.SafetyFactor,
		Recommendations: make([]Recommendation, 0, len(rows)),
	}
	for _, row := range rows {
		stock := current[row.Product]
		pred := decimal.NewFromFloat(row.Predicted)

		recommended := pred.Mul(factor).Sub(decimal.NewFromFloat(stock))
		if recommended.IsNegative() {
			recommended = decimal.Zero
		}

		plan.Recommendations = append(plan.Recommendations, Recommendation{
			Product:      row.Product,
			Period:       row.Period,
			Predicted:    row.Predicted,
			CurrentStock: stock,
			Recommended:  recommended.RoundBank(0).IntPart(),
			SafetyStock:  pred.Mul(buffer).RoundBank(0).IntPart(),
		})
	}
	return plan, nil
}

// ForProduct returns the recommendations of a single product
func (p *Plan) ForProduct(product string) []Recommendation {
	if p == nil {
		return nil
	}
	var recs []Recommendation
	for _, r := range p.Recommendations {
		if r.Product == product {
			recs = append(recs, r)
		}
	}
	return recs
}

// Totals sums the recommendations per product, ordered by product
func (p *Plan) Totals() []Total {
	if p == nil {
		return nil
	}
	byProduct := make(map[string]*Total)
	for _, r := range p.Recommendations {
		t, exists := byProduct[r.Product]
		if !exists {
			t = &Total{Product: r.Product, CurrentStock: r.CurrentStock}
			byProduct[r.Product] = t
		}
		t.Predicted += r.Predicted
		t.Recommended += r.Recommended
		t.SafetyStock += r.SafetyStock
	}

	totals := make([]Total, 0, len(byProduct))
	for _, t := range byProduct {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Product < totals[j].Product
	})
	return totals
}
