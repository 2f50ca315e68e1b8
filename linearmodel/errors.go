package linearmodel

import "errors"

var (
	ErrNoOptions          = errors.New("no options set")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrFeatureLenMismatch = errors.New("feature length does not match coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than features")
)
