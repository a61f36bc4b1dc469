package models

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearModel is the serializeable format of a linear sales model. Coefficients are keyed
// by feature column name; features without a coefficient have a weight of 0.
type LinearModel struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Linear predicts quantity as intercept + sum(coef * feature)
type Linear struct {
	intercept float64
	coef      []float64 // feature.Columns order
}

// NewLinear creates a linear model from a serializeable model
func NewLinear(m LinearModel) (*Linear, error) {
	labels := feature.CanonicalLabels()
	coef := make([]float64, labels.Len())
	for label, w := range m.Coefficients {
		idx, exists := labels.Index(label)
		if !exists {
			return nil, fmt.Errorf("%s, %w", label, ErrUnknownFeature)
		}
		coef[idx] = w
	}
	return &Linear{
		intercept: m.Intercept,
		coef:      coef,
	}, nil
}

// Load reads a linear model from a json file. A missing or unparseable file returns
// ErrModelUnavailable.
func Load(path string) (*Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("model file %s not found, %w", path, ErrModelUnavailable)
		}
		return nil, fmt.Errorf("unable to open model file %s, %w", path, errors.Join(ErrModelUnavailable, err))
	}
	defer f.Close()

	l, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to load model file %s, %w", path, err)
	}
	return l, nil
}

// Decode reads a json encoded linear model
func Decode(r io.Reader) (*Linear, error) {
	var m LinearModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Join(ErrModelUnavailable, err)
	}
	l, err := NewLinear(m)
	if err != nil {
		return nil, errors.Join(ErrModelUnavailable, err)
	}
	return l, nil
}

// Save writes the model as indented json to path
func (l *Linear) Save(path string) error {
	out, err := json.MarshalIndent(l.Model(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func (l *Linear) Predict(v feature.Vector) (float64, error) {
	if l == nil {
		return 0, ErrModelUnavailable
	}
	return l.intercept + floats.Dot(l.coef, v.Values()), nil
}

func (l *Linear) PredictBatch(x mat.Matrix) ([]float64, error) {
	if l == nil {
		return nil, ErrModelUnavailable
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	_, n := x.Dims()
	if n != len(l.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(l.coef), ErrFeatureLenMismatch)
	}
	coefMx := mat.NewDense(n, 1, l.Coef())

	var res mat.Dense
	res.Mul(x, coefMx)

	out := mat.Col(nil, 0, &res)
	floats.AddConst(l.intercept, out)
	return out, nil
}

func (l *Linear) Intercept() float64 {
	return l.intercept
}

// Coef returns a copy of the coefficients in feature.Columns order
func (l *Linear) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// Model returns the serializeable format of the linear model
func (l *Linear) Model() LinearModel {
	coef := make(map[string]float64, len(l.coef))
	for i, label := range feature.Columns() {
		if l.coef[i] == 0 {
			continue
		}
		coef[label] = l.coef[i]
	}
	return LinearModel{
		Intercept:    l.intercept,
		Coefficients: coef,
	}
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (l *Linear) ModelEq() string {
	eq := fmt.Sprintf("y ~ %.2f", l.intercept)
	for i, label := range feature.Columns() {
		w := l.coef[i]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, label)
	}
	return eq
}

// TablePrint writes the non-zero weights sorted by absolute value
func (l *Linear) TablePrint(w io.Writer) error {
	type weight struct {
		label string
		value float64
	}
	weights := []weight{{"intercept", l.intercept}}
	for i, label := range feature.Columns() {
		if l.coef[i] == 0 {
			continue
		}
		weights = append(weights, weight{label, l.coef[i]})
	}
	rest := weights[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return math.Abs(rest[i].value) > math.Abs(rest[j].value)
	})

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "Feature\tWeight\t\n"); err != nil {
		return err
	}
	for _, wt := range weights {
		if _, err := fmt.Fprintf(tbl, "%s\t%.3f\t\n", wt.label, wt.value); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
