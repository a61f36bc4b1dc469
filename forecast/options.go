package forecast

import (
	"errors"
	"fmt"
)

const (
	DefaultHorizon         = 3
	MinHorizon             = 1
	MaxHorizon             = 12
	DefaultZScore          = 1.96
	DefaultConfidenceLevel = "95%"
)

var (
	ErrInvalidHorizon = errors.New("horizon must be between 1 and 12 months")
	ErrInvalidZScore  = errors.New("z-score must be positive")
)

// Options configures how many months are forecasted and the width of the confidence band
type Options struct {
	Horizon         int     `json:"horizon_months"`
	ZScore          float64 `json:"z_score"`
	ConfidenceLevel string  `json:"confidence_level"`
}

// NewDefaultOptions forecasts three months ahead with a 95% confidence band
func NewDefaultOptions() *Options {
	return &Options{
		Horizon:         DefaultHorizon,
		ZScore:          DefaultZScore,
		ConfidenceLevel: DefaultConfidenceLevel,
	}
}

// Validate returns a copy of the options with defaults filled in. A nil receiver returns
// the default options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	opt := *o
	if opt.Horizon < MinHorizon || opt.Horizon > MaxHorizon {
		return nil, fmt.Errorf("got %d, %w", opt.Horizon, ErrInvalidHorizon)
	}
	if opt.ZScore < 0 {
		return nil, fmt.Errorf("got %.3f, %w", opt.ZScore, ErrInvalidZScore)
	}
	if opt.ZScore == 0 {
		opt.ZScore = DefaultZScore
	}
	if opt.ConfidenceLevel == "" {
		opt.ConfidenceLevel = DefaultConfidenceLevel
	}
	return &opt, nil
}
