package feature

import (
	"math"
	"sort"

	"github.com/aouyang1/go-salesforecaster/salesdata"
	"gonum.org/v1/gonum/mat"
)

// Row is a sales observation of one product in one month enriched with its model features
type Row struct {
	Product  string           `json:"product_name"`
	Period   salesdata.Period `json:"period"`
	Quantity float64          `json:"quantity"`
	Vector
}

// Complete reports whether the quantity and every feature were observed
func (r Row) Complete() bool {
	return !math.IsNaN(r.Quantity) && !r.HasMissing()
}

// Table is a feature table ordered by product and then chronologically within a product
type Table struct {
	Rows []Row `json:"rows"`

	// Records are the validated records the rows were built from
	Records []salesdata.Record `json:"-"`
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Products returns the distinct product names in ascending order
func (t *Table) Products() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var products []string
	for _, r := range t.Rows {
		if _, exists := seen[r.Product]; exists {
			continue
		}
		seen[r.Product] = struct{}{}
		products = append(products, r.Product)
	}
	sort.Strings(products)
	return products
}

// ForProduct returns the rows of a single product in table order
func (t *Table) ForProduct(product string) []Row {
	if t == nil {
		return nil
	}
	var rows []Row
	for _, r := range t.Rows {
		if r.Product == product {
			rows = append(rows, r)
		}
	}
	return rows
}

// Seeds returns the chronologically last row of every product, ordered by product. When a
// product has several rows in its last period the one appearing last in the table wins.
func (t *Table) Seeds() []Row {
	if t == nil {
		return nil
	}
	last := make(map[string]int)
	for i, r := range t.Rows {
		j, exists := last[r.Product]
		if !exists || !r.Period.Before(t.Rows[j].Period) {
			last[r.Product] = i
		}
	}

	seeds := make([]Row, 0, len(last))
	for _, product := range t.Products() {
		seeds = append(seeds, t.Rows[last[product]])
	}
	return seeds
}

// Complete returns the rows without any missing quantity or feature value
func (t *Table) Complete() []Row {
	if t == nil {
		return nil
	}
	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Complete() {
			rows = append(rows, r)
		}
	}
	return rows
}

// Matrix returns the design matrix of the table with one row per observation and one
// column per feature in Columns order
func (t *Table) Matrix() *mat.Dense {
	if t == nil {
		return nil
	}
	return Matrix(t.Rows)
}

// Targets returns the observed quantities in table order
func (t *Table) Targets() []float64 {
	if t == nil {
		return nil
	}
	return Targets(t.Rows)
}

// Matrix returns the m x 11 design matrix of the rows. Returns nil for no rows.
func Matrix(rows []Row) *mat.Dense {
	m := len(rows)
	if m == 0 {
		return nil
	}
	obs := make([]float64, 0, m*NumFeatures)
	for _, r := range rows {
		obs = append(obs, r.Values()...)
	}
	return mat.NewDense(m, NumFeatures, obs)
}

func Targets(rows []Row) []float64 {
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = r.Quantity
	}
	return y
}
