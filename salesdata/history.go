package salesdata

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidRange = errors.New("range start must not be after its end")

// Range is an inclusive range of periods. A zero From or To leaves that side open.
type Range struct {
	From Period `json:"from"`
	To   Period `json:"to"`
}

func (r Range) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("%s to %s, %w", r.From, r.To, ErrInvalidRange)
	}
	return nil
}

// Contains reports whether p falls within the range
func (r Range) Contains(p Period) bool {
	if !r.From.IsZero() && p.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && p.After(r.To) {
		return false
	}
	return true
}

// ProductStats describes the monthly quantities sold of a single product. Missing
// quantities are not counted.
type ProductStats struct {
	Product string  `json:"product_name"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Describe computes per product statistics of the records within the range. Only the listed
// products are described, or every product when none are listed. Products without a record
// in the range are left out and the rest are ordered by name.
func Describe(records []Record, products []string, rng Range) ([]ProductStats, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	var selected map[string]struct{}
	if len(products) > 0 {
		selected = make(map[string]struct{}, len(products))
		for _, p := range products {
			selected[p] = struct{}{}
		}
	}

	quantities := make(map[string][]float64)
	for _, r := range records {
		if selected != nil {
			if _, exists := selected[r.Product]; !exists {
				continue
			}
		}
		p, ok := r.Period()
		if !ok || !rng.Contains(p) {
			continue
		}
		if _, exists := quantities[r.Product]; !exists {
			quantities[r.Product] = nil
		}
		if !math.IsNaN(r.Quantity) {
			quantities[r.Product] = append(quantities[r.Product], r.Quantity)
		}
	}

	res := make([]ProductStats, 0, len(quantities))
	for product, y := range quantities {
		ps := ProductStats{Product: product, Count: len(y)}
		if len(y) > 0 {
			ps.Min = floats.Min(y)
			ps.Max = floats.Max(y)
			ps.Mean, ps.Std = stat.MeanStdDev(y, nil)
			if math.IsNaN(ps.Std) {
				ps.Std = 0
			}
		}
		res = append(res, ps)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Product < res[j].Product
	})
	return res, nil
}
