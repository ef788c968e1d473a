package eta

import (
	"fmt"

	"tracking/internal/pkg/errs"
)

// Confidence labels where an estimate came from.
// High, Medium and Low are reported by the oracle as is; Fallback is only ever
// set when the oracle could not be used.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
	ConfidenceFallback Confidence = "fallback"
)

// ParseConfidence accepts the four known labels.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Confidence) Validate() error {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceFallback:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("confidence", fmt.Errorf("%q is not a known confidence", string(c)))
	}
}

// IsDegraded reports whether the estimate was produced without the oracle.
func (c Confidence) IsDegraded() bool {
	return c == ConfidenceFallback
}

func (c Confidence) String() string {
	return string(c)
}
