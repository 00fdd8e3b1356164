package utils

import (
	"github.com/pkg/errors"
)

// ErrInsufficientData is the root of every "not enough input to proceed" failure: too few
// fragments when a scan deadline expires, or too few points inside a region of interest.
var ErrInsufficientData = errors.New("insufficient data")

// NewInsufficientDataError reports that only have of the needed count of what was available.
func NewInsufficientDataError(what string, have, need int) error {
	return errors.Wrapf(ErrInsufficientData, "%s: have %d, need at least %d", what, have, need)
}
