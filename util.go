package salesforecaster

import (
	"math"
	"sort"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	// echarts leaves a gap for "-" values
	missingValue = "-"

	intervalStack   = "confidence_interval"
	intervalOpacity = 0.3
)

// LinePeriods generates an echart multi-line chart over monthly periods. Each series in y
// must have the same length as periods and NaN values are left as gaps.
func LinePeriods(title string, seriesName []string, periods []salesdata.Period, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Label()
	}
	line = line.SetXAxis(labels)

	for i, series := range seriesName {
		lineData := make([]opts.LineData, len(periods))
		for j := range periods {
			if j >= len(y[i]) || math.IsNaN(y[i][j]) {
				lineData[j] = opts.LineData{Value: missingValue}
				continue
			}
			lineData[j] = opts.LineData{Value: y[i][j]}
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// LineForecast generates an echart line chart of the observed quantity of a product followed
// by the forecasted values inside a filled confidence band. The band is drawn by stacking the
// interval width on top of the lower bound.
func LineForecast(product string, history []feature.Row, future []forecast.Row) *charts.Line {
	n := len(history) + len(future)
	periods := make([]salesdata.Period, 0, n)
	actual := make([]float64, 0, n)
	predicted := make([]float64, 0, n)
	lower := make([]float64, 0, n)
	width := make([]float64, 0, n)

	for _, r := range history {
		periods = append(periods, r.Period)
		actual = append(actual, r.Quantity)
		predicted = append(predicted, math.NaN())
		lower = append(lower, math.NaN())
		width = append(width, math.NaN())
	}
	for _, r := range future {
		periods = append(periods, r.Period)
		actual = append(actual, math.NaN())
		predicted = append(predicted, r.Predicted)
		lower = append(lower, r.CILower)
		width = append(width, r.CIUpper-r.CILower)
	}

	line := LinePeriods(
		"Sales Forecast "+product,
		[]string{"Actual", "Forecast", "Lower", "Interval"},
		periods,
		[][]float64{actual, predicted, lower, width},
	)
	line.MultiSeries[2].ConfigureSeriesOpts(
		charts.WithLineChartOpts(opts.LineChart{Stack: intervalStack}),
	)
	line.MultiSeries[3].ConfigureSeriesOpts(
		charts.WithLineChartOpts(opts.LineChart{Stack: intervalStack}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: intervalOpacity}),
	)
	return line
}

// LineCurrent generates an echart line chart of the observed against the predicted quantity
// of a product, marking the months with an outlying residual
func LineCurrent(product string, rows []forecast.CurrentRow) *charts.Line {
	var periods []salesdata.Period
	var actual, predicted, outlier []float64
	for _, r := range rows {
		if r.Product != product {
			continue
		}
		periods = append(periods, r.Period)
		actual = append(actual, r.Actual)
		predicted = append(predicted, r.Predicted)
		if r.Outlier {
			outlier = append(outlier, r.Actual)
		} else {
			outlier = append(outlier, math.NaN())
		}
	}

	return LinePeriods(
		"Current Predictions "+product,
		[]string{"Actual", "Predicted", "Outlier"},
		periods,
		[][]float64{actual, predicted, outlier},
	)
}

// LineHistory generates an echart line chart of the observed quantity of each product over
// the union of their periods. When current predictions are given a predicted series is
// added per product.
func LineHistory(title string, products []string, rows []feature.Row, current []forecast.CurrentRow) *charts.Line {
	type key struct {
		product string
		period  salesdata.Period
	}
	actual := make(map[key]float64, len(rows))
	seen := make(map[salesdata.Period]struct{})
	var periods []salesdata.Period
	for _, r := range rows {
		actual[key{r.Product, r.Period}] = r.Quantity
		if _, exists := seen[r.Period]; !exists {
			seen[r.Period] = struct{}{}
			periods = append(periods, r.Period)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Before(periods[j])
	})

	predicted := make(map[key]float64, len(current))
	for _, r := range current {
		predicted[key{r.Product, r.Period}] = r.Predicted
	}

	var names []string
	var y [][]float64
	series := func(name, product string, values map[key]float64) {
		s := make([]float64, len(periods))
		for i, p := range periods {
			v, exists := values[key{product, p}]
			if !exists {
				v = math.NaN()
			}
			s[i] = v
		}
		names = append(names, name)
		y = append(y, s)
	}
	for _, product := range products {
		series(product+" - Actual", product, actual)
		if len(current) > 0 {
			series(product+" - Predicted", product, predicted)
		}
	}

	return LinePeriods(title, names, periods, y)
}

// BarTopProducts generates an echart bar chart of the total quantity sold per product
func BarTopProducts(title string, totals []salesdata.ProductTotal) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	names := make([]string, len(totals))
	barData := make([]opts.BarData, len(totals))
	for i, t := range totals {
		names[i] = t.Product
		barData[i] = opts.BarData{Value: t.Quantity}
	}

	bar.SetXAxis(names).
		AddSeries("Quantity", barData)
	return bar
}
