package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-salesforecaster/salesdata"
)

const (
	LabelYear        = "year"
	LabelMonth       = "month"
	LabelQuarter     = "quarter"
	LabelIsStartYear = "is_start_year"
	LabelIsEndYear   = "is_end_year"
	LabelLag1        = "lag_1"
	LabelLag2        = "lag_2"
	LabelLag3        = "lag_3"
	LabelMA3         = "ma_3"
	LabelMA6         = "ma_6"
	LabelDiff1       = "diff_1"

	// NumFeatures is the number of values a model receives per prediction
	NumFeatures = 11
)

var ErrVectorLen = errors.New("feature vector must have exactly 11 values")

// Columns returns the model feature names in the order Vector.Values produces them
func Columns() []string {
	return []string{
		LabelYear,
		LabelMonth,
		LabelQuarter,
		LabelIsStartYear,
		LabelIsEndYear,
		LabelLag1,
		LabelLag2,
		LabelLag3,
		LabelMA3,
		LabelMA6,
		LabelDiff1,
	}
}

// Vector is the fixed set of inputs a sales model predicts from. Flags are encoded as
// 0 or 1.
type Vector struct {
	Year        float64 `json:"year"`
	Month       float64 `json:"month"`
	Quarter     float64 `json:"quarter"`
	IsStartYear float64 `json:"is_start_year"`
	IsEndYear   float64 `json:"is_end_year"`
	Lag1        float64 `json:"lag_1"`
	Lag2        float64 `json:"lag_2"`
	Lag3        float64 `json:"lag_3"`
	MA3         float64 `json:"ma_3"`
	MA6         float64 `json:"ma_6"`
	Diff1       float64 `json:"diff_1"`
}

// CalendarVector returns a vector with only the calendar features of the period set
func CalendarVector(p salesdata.Period) Vector {
	return Vector{
		Year:        float64(p.Year),
		Month:       float64(p.Month),
		Quarter:     float64(p.Quarter()),
		IsStartYear: boolFeature(p.Month == 1),
		IsEndYear:   boolFeature(p.Month == 12),
	}
}

// NewVector builds a vector from values in Columns order
func NewVector(values []float64) (Vector, error) {
	if len(values) != NumFeatures {
		return Vector{}, fmt.Errorf("got %d values, %w", len(values), ErrVectorLen)
	}
	return Vector{
		Year:        values[0],
		Month:       values[1],
		Quarter:     values[2],
		IsStartYear: values[3],
		IsEndYear:   values[4],
		Lag1:        values[5],
		Lag2:        values[6],
		Lag3:        values[7],
		MA3:         values[8],
		MA6:         values[9],
		Diff1:       values[10],
	}, nil
}

// Values returns the features in Columns order
func (v Vector) Values() []float64 {
	return []float64{
		v.Year,
		v.Month,
		v.Quarter,
		v.IsStartYear,
		v.IsEndYear,
		v.Lag1,
		v.Lag2,
		v.Lag3,
		v.MA3,
		v.MA6,
		v.Diff1,
	}
}

// Get returns the value of a feature by its column name
func (v Vector) Get(label string) (float64, bool) {
	idx, exists := CanonicalLabels().Index(label)
	if !exists {
		return 0, false
	}
	return v.Values()[idx], true
}

// HasMissing reports whether any feature is NaN
func (v Vector) HasMissing() bool {
	for _, val := range v.Values() {
		if math.IsNaN(val) {
			return true
		}
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
