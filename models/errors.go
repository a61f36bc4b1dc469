package models

import (
	"errors"
)

var (
	ErrModelUnavailable   = errors.New("sales model unavailable")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrUnknownFeature     = errors.New("unknown feature label for model coefficient")
	ErrPredictionLen      = errors.New("batch prediction returned a different number of values than rows")
)
