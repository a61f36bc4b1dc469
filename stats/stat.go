package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLowerPercentile = 0.25
	DefaultUpperPercentile = 0.75
	DefaultTukeyFactor     = 1.5
)

var ErrInvalidPercentile = errors.New("lower percentile must be less than upper percentile and both within [0, 1]")

// OutlierOptions sets the Tukey fences used to flag outliers. Values beyond the inner range
// between the lower and upper percentiles, extended by TukeyFactor times that range on each
// side, are outliers.
type OutlierOptions struct {
	LowerPercentile float64 `json:"lower_percentile"`
	UpperPercentile float64 `json:"upper_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewDefaultOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		LowerPercentile: DefaultLowerPercentile,
		UpperPercentile: DefaultUpperPercentile,
		TukeyFactor:     DefaultTukeyFactor,
	}
}

func (o *OutlierOptions) Validate() (*OutlierOptions, error) {
	if o == nil {
		return NewDefaultOutlierOptions(), nil
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile >= o.UpperPercentile {
		return nil, fmt.Errorf("got %.2f and %.2f, %w", o.LowerPercentile, o.UpperPercentile, ErrInvalidPercentile)
	}
	opt := *o
	opt.TukeyFactor = math.Max(opt.TukeyFactor, 0.0)
	return &opt, nil
}

// DetectOutliers returns the indices of y outside of the Tukey fences. NaN values are ignored
// when computing the fences and never flagged.
func DetectOutliers(y []float64, opt *OutlierOptions) ([]int, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	yCopy := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			yCopy = append(yCopy, v)
		}
	}
	if len(yCopy) == 0 {
		return nil, nil
	}
	sort.Float64s(yCopy)

	lower := stat.Quantile(opt.LowerPercentile, stat.Empirical, yCopy, nil)
	upper := stat.Quantile(opt.UpperPercentile, stat.Empirical, yCopy, nil)
	innerRange := upper - lower
	lower -= innerRange * opt.TukeyFactor
	upper += innerRange * opt.TukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx, nil
}
