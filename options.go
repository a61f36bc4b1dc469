package salesforecaster

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/salesdata"
	"github.com/aouyang1/go-salesforecaster/stock"
	"github.com/goccy/go-json"
)

const DefaultTopN = 10

// Options configures every stage of a session. Nil sub-options use their package defaults.
type Options struct {
	Columns          *salesdata.Columns          `json:"columns"`
	ValidatorOptions *salesdata.ValidatorOptions `json:"validator_options"`
	ForecastOptions  *forecast.Options           `json:"forecast_options"`
	StockOptions     *stock.Options              `json:"stock_options"`

	// TopN is the number of best selling products reported in the summary and plotted
	TopN int `json:"top_n"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Columns:          salesdata.NewDefaultColumns(),
		ValidatorOptions: salesdata.NewDefaultValidatorOptions(),
		ForecastOptions:  forecast.NewDefaultOptions(),
		StockOptions:     stock.NewDefaultOptions(),
		TopN:             DefaultTopN,
	}
}

// LoadOptions reads json encoded options from path. Fields missing from the file keep
// their default values.
func LoadOptions(path string) (*Options, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read options file, %w", err)
	}

	opt := NewDefaultOptions()
	if err := json.Unmarshal(bytes, opt); err != nil {
		return nil, fmt.Errorf("unable to parse options file %s, %w", path, err)
	}
	opt.fillDefaults()
	return opt, nil
}

// fillDefaults replaces sub-options explicitly set to null
func (o *Options) fillDefaults() {
	if o.Columns == nil {
		o.Columns = salesdata.NewDefaultColumns()
	}
	if o.ValidatorOptions == nil {
		o.ValidatorOptions = salesdata.NewDefaultValidatorOptions()
	}
	if o.ForecastOptions == nil {
		o.ForecastOptions = forecast.NewDefaultOptions()
	}
	if o.StockOptions == nil {
		o.StockOptions = stock.NewDefaultOptions()
	}
}

func (o *Options) featureOptions() *feature.Options {
	return &feature.Options{
		Columns:   o.Columns,
		Validator: salesdata.NewValidator(o.ValidatorOptions),
	}
}

func (o *Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}
