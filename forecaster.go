// Package salesforecaster ties the sales data, feature builder, forward forecaster and stock
// recommendations together into a session holding the latest results for a single user.
package salesforecaster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/models"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/aouyang1/go-salesforecaster/stock"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrNoData         = errors.New("no sales data loaded")
	ErrUnknownProduct = errors.New("unknown product")
	ErrEmptyHistory   = errors.New("no sales data for the selected products and range")
)

const (
	DefaultDataPath  = "data.csv"
	DefaultModelPath = "model.json"

	SourceDefault  = "default"
	SourceUploaded = "uploaded"

	// DefaultHistoryProducts is the number of products shown in the history when none are
	// selected
	DefaultHistoryProducts = 3
)

// Session holds the loaded sales data, the model and the latest predictions. Loading new
// data clears any cached predictions. A Session is not safe for concurrent use.
type Session struct {
	opt   *Options
	model models.Predictor

	source string
	table  *feature.Table
	report *salesdata.Report

	current *forecast.Current
	future  *forecast.Result
}

// New creates a new session using the provided options. If no options are provided a default
// is used.
func New(opt *Options) *Session {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	o := *opt
	o.fillDefaults()
	return &Session{opt: &o}
}

// LoadFile reads a sales csv from path. The default data path is labeled as the default
// source and anything else as uploaded.
func (s *Session) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s not found, %w", path, salesdata.ErrDataUnavailable)
		}
		return fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	source := SourceUploaded
	if path == DefaultDataPath {
		source = SourceDefault
	}
	return s.Load(f, source)
}

// Load reads a sales csv and builds the feature table. On success any cached predictions
// are cleared. On failure the previously loaded data is kept and the validation report of
// the rejected data is available from Report.
func (s *Session) Load(r io.Reader, source string) error {
	raw, err := salesdata.ReadCSV(r)
	if err != nil {
		return fmt.Errorf("unable to read sales data, %w", err)
	}

	table, report, err := feature.Build(raw, s.opt.featureOptions())
	s.report = report
	if err != nil {
		return fmt.Errorf("unable to build features, %w", err)
	}

	s.source = source
	s.table = table
	s.current = nil
	s.future = nil

	slog.Info("loaded sales data",
		"source", source,
		"rows", len(table.Records),
		"products", len(table.Products()),
		"warnings", len(report.Warnings),
	)
	return nil
}

// SetModel replaces the model and clears cached predictions
func (s *Session) SetModel(m models.Predictor) {
	s.model = m
	s.current = nil
	s.future = nil
}

// LoadModel loads a linear model from a json file
func (s *Session) LoadModel(path string) error {
	m, err := models.Load(path)
	if err != nil {
		return err
	}
	s.SetModel(m)
	return nil
}

// Source returns whether the loaded data is the default or an uploaded dataset
func (s *Session) Source() string {
	return s.source
}

// Table returns the feature table of the loaded data
func (s *Session) Table() *feature.Table {
	return s.table
}

// Report returns the validation report of the last load attempt
func (s *Session) Report() *salesdata.Report {
	return s.report
}

func (s *Session) Products() []string {
	return s.table.Products()
}

func (s *Session) Summary() (salesdata.Summary, error) {
	if s.table.Len() == 0 {
		return salesdata.Summary{}, ErrNoData
	}
	return salesdata.Summarize(s.table.Records, s.opt.topN()), nil
}

// PredictCurrent predicts every observed month of the loaded data. The result is cached
// until new data or a new model is loaded.
func (s *Session) PredictCurrent() (*forecast.Current, error) {
	if s.current != nil {
		return s.current, nil
	}
	if s.table.Len() == 0 {
		return nil, ErrNoData
	}
	cur, err := forecast.PredictCurrent(s.table, s.model)
	if err != nil {
		return nil, fmt.Errorf("unable to predict current periods, %w", err)
	}
	s.current = cur
	return cur, nil
}

// Forecast predicts the months after the last observed month of every product. The result
// is cached until new data or a new model is loaded.
func (s *Session) Forecast() (*forecast.Result, error) {
	if s.future != nil {
		return s.future, nil
	}
	if s.table.Len() == 0 {
		return nil, ErrNoData
	}
	res, err := forecast.Forecast(s.table, s.model, s.opt.ForecastOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast, %w", err)
	}
	s.future = res
	return res, nil
}

// Recommend computes the stock to order for every forecasted month given the stock on
// hand per product
func (s *Session) Recommend(current map[string]float64) (*stock.Plan, error) {
	res, err := s.Forecast()
	if err != nil {
		return nil, err
	}
	return stock.Recommend(res.Rows, current, s.opt.StockOptions)
}

// PlotProduct uses the Apache Echarts library to write an html page showing the sales
// history of a product with its forecast and confidence band, followed by the one step
// predictions of the observed months.
func (s *Session) PlotProduct(w io.Writer, product string) error {
	if s.table.Len() == 0 {
		return ErrNoData
	}
	history := s.table.ForProduct(product)
	if len(history) == 0 {
		return fmt.Errorf("%q, %w", product, ErrUnknownProduct)
	}
	res, err := s.Forecast()
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(LineForecast(product, history, res.ForProduct(product)))

	cur, err := s.PredictCurrent()
	if err != nil {
		slog.Warn("unable to plot current predictions", "product", product, "error", err.Error())
	} else {
		page.AddCharts(LineCurrent(product, cur.Rows))
	}
	return page.Render(w)
}

// PlotTopProducts writes an html page with a bar chart of the best selling products
func (s *Session) PlotTopProducts(w io.Writer) error {
	summary, err := s.Summary()
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(BarTopProducts("Top Products", summary.TopProducts))
	return page.Render(w)
}

// historyProducts checks the selected products exist, defaulting to the first products by
// name when none are selected
func (s *Session) historyProducts(products []string) ([]string, error) {
	all := s.table.Products()
	if len(products) == 0 {
		return all[:min(len(all), DefaultHistoryProducts)], nil
	}
	known := make(map[string]struct{}, len(all))
	for _, p := range all {
		known[p] = struct{}{}
	}
	for _, p := range products {
		if _, exists := known[p]; !exists {
			return nil, fmt.Errorf("%q, %w", p, ErrUnknownProduct)
		}
	}
	return products, nil
}

// Describe computes descriptive statistics of the monthly quantity of the selected products
// within the range. When no products are selected the first products by name are used.
func (s *Session) Describe(products []string, rng salesdata.Range) ([]salesdata.ProductStats, error) {
	if s.table.Len() == 0 {
		return nil, ErrNoData
	}
	products, err := s.historyProducts(products)
	if err != nil {
		return nil, err
	}
	stats, err := salesdata.Describe(s.table.Records, products, rng)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, ErrEmptyHistory
	}
	return stats, nil
}

// PlotHistory writes an html page with the sales trend of the selected products within the
// range. The current predictions are drawn alongside when a model is set.
func (s *Session) PlotHistory(w io.Writer, products []string, rng salesdata.Range) error {
	if s.table.Len() == 0 {
		return ErrNoData
	}
	if err := rng.Validate(); err != nil {
		return err
	}
	products, err := s.historyProducts(products)
	if err != nil {
		return err
	}

	selected := make(map[string]struct{}, len(products))
	for _, p := range products {
		selected[p] = struct{}{}
	}
	var rows []feature.Row
	for _, r := range s.table.Rows {
		if _, exists := selected[r.Product]; exists && rng.Contains(r.Period) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return ErrEmptyHistory
	}

	var current []forecast.CurrentRow
	if s.model != nil {
		cur, err := s.PredictCurrent()
		if err != nil {
			slog.Warn("unable to plot current predictions", "error", err.Error())
		} else {
			for _, r := range cur.Rows {
				if _, exists := selected[r.Product]; exists && rng.Contains(r.Period) {
					current = append(current, r)
				}
			}
		}
	}

	page := components.NewPage()
	page.AddCharts(LineHistory("Sales History", products, rows, current))
	return page.Render(w)
}
