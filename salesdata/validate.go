package salesdata

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrSchema          = errors.New("sales table failed schema validation")
	ErrMissingColumns  = errors.New("required columns not found")
	ErrEmptyTable      = errors.New("sales table is empty")
	ErrMonthOutOfRange = errors.New("month must be between 1 and 12")
	ErrInvalidPeriod   = errors.New("year and month must be integers to build a period")
)

const (
	DefaultMinYear = 1900
	DefaultMaxYear = 2100
)

// SchemaError is returned when the raw sales table cannot be turned into features. It
// holds every fatal problem found so the caller can report them together.
type SchemaError struct {
	Errs []error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: %s", ErrSchema.Error(), strings.Join(msgs, "; "))
}

func (e *SchemaError) Unwrap() []error {
	return e.Errs
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// WarningKind classifies an advisory issue found in the sales table
type WarningKind string

const (
	WarningYearOutOfRange   WarningKind = "year_out_of_range"
	WarningMissingValues    WarningKind = "missing_values"
	WarningNegativeQuantity WarningKind = "negative_quantity"
)

// Warning is a non-fatal data quality issue. Processing continues when warnings are present.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// Report summarizes a validation pass over the sales table
type Report struct {
	Rows     int       `json:"rows"`
	Warnings []Warning `json:"warnings"`
}

func (r *Report) warn(kind WarningKind, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HasWarning reports whether a warning of the given kind was raised
func (r *Report) HasWarning(kind WarningKind) bool {
	if r == nil {
		return false
	}
	for _, w := range r.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// ValidatorOptions sets the plausible year range. Years outside of it only raise a warning.
type ValidatorOptions struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

func NewDefaultValidatorOptions() *ValidatorOptions {
	return &ValidatorOptions{
		MinYear: DefaultMinYear,
		MaxYear: DefaultMaxYear,
	}
}

// Validator checks the schema and value ranges of a sales table
type Validator struct {
	opt *ValidatorOptions
}

// NewValidator creates a validator. If no options are provided a default is used.
func NewValidator(opt *ValidatorOptions) *Validator {
	if opt == nil {
		opt = NewDefaultValidatorOptions()
	}
	return &Validator{opt: opt}
}

// ValidateTable checks the table has every required column, converts it to records and
// validates the records. The report is returned even when validation fails.
func (v *Validator) ValidateTable(t *Table, cols *Columns) ([]Record, *Report, error) {
	if t == nil {
		return nil, &Report{}, &SchemaError{Errs: []error{ErrEmptyTable}}
	}
	records, err := t.Records(cols)
	if err != nil {
		return nil, &Report{Rows: len(t.Rows)}, err
	}
	report, err := v.Validate(records)
	if err != nil {
		return nil, report, err
	}
	return records, report, nil
}

// Validate checks the value ranges of the records. A month outside of 1-12, a year or
// month that cannot form a period, or no records at all fail validation. Implausible
// years, missing values and negative quantities are reported as warnings.
func (v *Validator) Validate(records []Record) (*Report, error) {
	if v == nil {
		v = NewValidator(nil)
	}

	report := &Report{Rows: len(records)}
	if len(records) == 0 {
		return report, &SchemaError{Errs: []error{ErrEmptyTable}}
	}

	var (
		missing       int
		negative      int
		yearLo        = math.Inf(1)
		yearHi        = math.Inf(-1)
		badMonthRows  []int
		badPeriodRows []int
	)
	for i, r := range records {
		missing += r.MissingValues()

		if !math.IsNaN(r.Year) {
			yearLo = math.Min(yearLo, r.Year)
			yearHi = math.Max(yearHi, r.Year)
		}
		if !math.IsNaN(r.Month) && (r.Month < 1 || r.Month > 12) {
			badMonthRows = append(badMonthRows, i)
			continue
		}
		if _, ok := r.Period(); !ok {
			badPeriodRows = append(badPeriodRows, i)
		}
		if r.Quantity < 0 {
			negative++
		}
	}

	if missing > 0 {
		report.warn(WarningMissingValues, "found %d missing values in the data", missing)
	}
	if yearLo < float64(v.opt.MinYear) || yearHi > float64(v.opt.MaxYear) {
		report.warn(WarningYearOutOfRange, "years outside of the plausible range (%d-%d)", v.opt.MinYear, v.opt.MaxYear)
	}
	if negative > 0 {
		report.warn(WarningNegativeQuantity, "found %d negative sales quantities", negative)
	}

	var errs []error
	if len(badMonthRows) > 0 {
		errs = append(errs, fmt.Errorf("%d rows starting at row %d, %w", len(badMonthRows), badMonthRows[0], ErrMonthOutOfRange))
	}
	if len(badPeriodRows) > 0 {
		errs = append(errs, fmt.Errorf("%d rows starting at row %d, %w", len(badPeriodRows), badPeriodRows[0], ErrInvalidPeriod))
	}
	if len(errs) > 0 {
		return report, &SchemaError{Errs: errs}
	}
	return report, nil
}
