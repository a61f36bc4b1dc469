// Package feature turns a raw monthly sales table into model ready features. Every product
// is treated as its own time series: rows are ordered chronologically within the product
// and lag, moving average and difference features never look at another product's rows.
package feature

import (
	"log/slog"
	"math"
	"sort"

	"github.com/aouyang1/go-salesforecaster/salesdata"
)

const (
	MA3Window = 3
	MA6Window = 6
)

// Options configures how the raw table is read and validated
type Options struct {
	Columns   *salesdata.Columns
	Validator *salesdata.Validator
}

// NewDefaultOptions reads the point-of-sale column names with the default validator
func NewDefaultOptions() *Options {
	return &Options{
		Columns:   salesdata.NewDefaultColumns(),
		Validator: salesdata.NewValidator(nil),
	}
}

func (o *Options) validator() *salesdata.Validator {
	if o == nil || o.Validator == nil {
		return salesdata.NewValidator(nil)
	}
	return o.Validator
}

func (o *Options) columns() *salesdata.Columns {
	if o == nil || o.Columns == nil {
		return salesdata.NewDefaultColumns()
	}
	return o.Columns
}

// Build validates the raw table and derives the feature table. The validation report is
// returned alongside the table and also on a schema failure so warnings can be shown to
// the user either way.
func Build(raw *salesdata.Table, opt *Options) (*Table, *salesdata.Report, error) {
	records, report, err := opt.validator().ValidateTable(raw, opt.columns())
	if err != nil {
		return nil, report, err
	}
	logWarnings(report)
	return build(records), report, nil
}

// BuildRecords derives the feature table from typed records, skipping the column check
func BuildRecords(records []salesdata.Record, opt *Options) (*Table, *salesdata.Report, error) {
	report, err := opt.validator().Validate(records)
	if err != nil {
		return nil, report, err
	}
	logWarnings(report)
	return build(records), report, nil
}

func logWarnings(report *salesdata.Report) {
	for _, w := range report.Warnings {
		slog.Warn("sales data warning", "kind", w.Kind, "message", w.Message)
	}
}

// build assumes every record has a valid period
func build(records []salesdata.Record) *Table {
	groups := make(map[string][]salesdata.Record)
	for _, r := range records {
		groups[r.Product] = append(groups[r.Product], r)
	}

	products := make([]string, 0, len(groups))
	for product := range groups {
		products = append(products, product)
	}
	sort.Strings(products)

	t := &Table{Rows: make([]Row, 0, len(records)), Records: records}
	for _, product := range products {
		t.Rows = append(t.Rows, buildProduct(product, groups[product])...)
	}

	slog.Debug("feature preparation completed", "rows", len(t.Rows), "products", len(products))
	return t
}

func buildProduct(product string, records []salesdata.Record) []Row {
	periods := make([]salesdata.Period, len(records))
	for i, r := range records {
		periods[i], _ = r.Period()
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return periods[order[i]].Before(periods[order[j]])
	})

	qty := make([]float64, len(records))
	for i, idx := range order {
		qty[i] = records[idx].Quantity
	}

	ma3 := RollingMean(qty, MA3Window)
	ma6 := RollingMean(qty, MA6Window)

	rows := make([]Row, len(qty))
	for i, idx := range order {
		v := CalendarVector(periods[idx])
		v.Lag1 = fillMissing(Lag(qty, i, 1))
		v.Lag2 = fillMissing(Lag(qty, i, 2))
		v.Lag3 = fillMissing(Lag(qty, i, 3))
		v.MA3 = fillMissing(ma3[i])
		v.MA6 = fillMissing(ma6[i])
		v.Diff1 = fillMissing(qty[i] - Lag(qty, i, 1))

		rows[i] = Row{
			Product:  product,
			Period:   periods[idx],
			Quantity: fillMissing(qty[i]),
			Vector:   v,
		}
	}
	return rows
}

// Lag returns the value k positions before i, or NaN when the series is too short
func Lag(y []float64, i, k int) float64 {
	if i-k < 0 || i-k >= len(y) {
		return math.NaN()
	}
	return y[i-k]
}

// RollingMean computes a trailing mean over the last window values including the current
// one. The window expands at the start of the series and NaNs are skipped; a window
// without any observed value is NaN.
func RollingMean(y []float64, window int) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		var cnt int
		for _, v := range y[start : i+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			cnt++
		}
		if cnt == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(cnt)
	}
	return out
}

func fillMissing(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
