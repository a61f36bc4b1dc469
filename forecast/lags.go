package forecast

import (
	"math"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/salesdata"
)

const lagDepth = 3

// lagState tracks the rollout of a single product. The seed row supplies the observed
// history and a ring buffer holds the predictions of the last lagDepth steps, indexed by
// step modulo lagDepth.
type lagState struct {
	quantity float64
	lag1     float64
	lag2     float64
	ma6      float64

	preds [lagDepth]float64
	steps [lagDepth]int // step stored in each slot, 0 when empty
}

func newLagState(seed feature.Row) *lagState {
	return &lagState{
		quantity: fillMissing(seed.Quantity),
		lag1:     fillMissing(seed.Lag1),
		lag2:     fillMissing(seed.Lag2),
		ma6:      fillMissing(seed.MA6),
	}
}

// prediction returns the prediction made at step if it succeeded
func (s *lagState) prediction(step int) (float64, bool) {
	if step < 1 {
		return 0, false
	}
	slot := step % lagDepth
	if s.steps[slot] != step {
		return 0, false
	}
	return s.preds[slot], true
}

func (s *lagState) record(step int, pred float64) {
	slot := step % lagDepth
	s.preds[slot] = pred
	s.steps[slot] = step
}

// skip marks step as failed so later steps fall back to the seed history
func (s *lagState) skip(step int) {
	s.steps[step%lagDepth] = 0
}

// lags returns lag_1, lag_2 and lag_3 for step. The first step shifts the seed history
// forward by one month. Later steps use the predictions of the previous steps, falling back
// to the seed's lag_1 for lag_1 and lag_2 and to the seed's lag_2 for lag_3.
func (s *lagState) lags(step int) (float64, float64, float64) {
	if step == 1 {
		return s.quantity, s.lag1, s.lag2
	}

	lag1, ok := s.prediction(step - 1)
	if !ok {
		lag1 = s.lag1
	}
	lag2, ok := s.prediction(step - 2)
	if !ok {
		lag2 = s.lag1
	}
	lag3, ok := s.prediction(step - 3)
	if !ok {
		lag3 = s.lag2
	}
	return lag1, lag2, lag3
}

// vector returns the model input for step targeting period p. ma_6 stays at the seed's
// value for every step.
func (s *lagState) vector(step int, p salesdata.Period) feature.Vector {
	v := feature.CalendarVector(p)
	v.Lag1, v.Lag2, v.Lag3 = s.lags(step)
	v.MA3 = (v.Lag1 + v.Lag2 + v.Lag3) / 3
	v.MA6 = s.ma6
	v.Diff1 = v.Lag1 - v.Lag2
	return v
}

func fillMissing(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
