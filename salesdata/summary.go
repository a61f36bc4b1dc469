package salesdata

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ProductTotal is the total quantity sold for a single product
type ProductTotal struct {
	Product  string  `json:"product_name"`
	Quantity float64 `json:"quantity"`
}

// Summary holds headline statistics of a sales table
type Summary struct {
	Products      int            `json:"products"`
	Periods       int            `json:"periods"`
	FirstPeriod   Period         `json:"first_period"`
	LastPeriod    Period         `json:"last_period"`
	TotalQuantity float64        `json:"total_quantity"`
	MeanQuantity  float64        `json:"mean_quantity"`
	MinQuantity   float64        `json:"min_quantity"`
	MaxQuantity   float64        `json:"max_quantity"`
	StdQuantity   float64        `json:"std_quantity"`
	TopProducts   []ProductTotal `json:"top_products"`
}

// Summarize computes the summary statistics over the records, ignoring missing quantities.
// TopProducts holds up to topN products with the highest total quantity, ties ordered by
// product name.
func Summarize(records []Record, topN int) Summary {
	var s Summary

	totals := make(map[string]float64)
	periods := make(map[Period]struct{})
	quantities := make([]float64, 0, len(records))

	for _, r := range records {
		if _, exists := totals[r.Product]; !exists {
			totals[r.Product] = 0
		}
		if p, ok := r.Period(); ok {
			periods[p] = struct{}{}
			if s.FirstPeriod.IsZero() || p.Before(s.FirstPeriod) {
				s.FirstPeriod = p
			}
			if s.LastPeriod.IsZero() || p.After(s.LastPeriod) {
				s.LastPeriod = p
			}
		}
		if math.IsNaN(r.Quantity) {
			continue
		}
		totals[r.Product] += r.Quantity
		quantities = append(quantities, r.Quantity)
	}

	s.Products = len(totals)
	s.Periods = len(periods)
	if len(quantities) > 0 {
		s.TotalQuantity = floats.Sum(quantities)
		s.MinQuantity = floats.Min(quantities)
		s.MaxQuantity = floats.Max(quantities)
		s.MeanQuantity, s.StdQuantity = stat.MeanStdDev(quantities, nil)
		if math.IsNaN(s.StdQuantity) {
			s.StdQuantity = 0
		}
	}

	ranked := make([]ProductTotal, 0, len(totals))
	for product, qty := range totals {
		ranked = append(ranked, ProductTotal{Product: product, Quantity: qty})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Product < ranked[j].Product
	})
	if topN >= 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	s.TopProducts = ranked
	return s
}
