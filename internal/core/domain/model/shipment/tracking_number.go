package shipment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tracking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	trackingPrefix     = "TRK"
	trackingSuffixSize = 5
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var trackingPattern = regexp.MustCompile(`^TRK[0-9A-Z]{6,}$`)

// TrackingNumber is the public, immutable identifier of a shipment, used both
// for lookups and as the subscription key.
type TrackingNumber string

// NewTrackingNumber builds "TRK" + base36 milliseconds + 5 random base36 characters.
// The random part comes from a version 4 UUID.
func NewTrackingNumber(now time.Time) TrackingNumber {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	entropy := uuid.New()
	suffix := make([]byte, trackingSuffixSize)
	for i := range suffix {
		suffix[i] = base36Alphabet[int(entropy[i])%len(base36Alphabet)]
	}

	return TrackingNumber(trackingPrefix + stamp + string(suffix))
}

// ParseTrackingNumber normalizes case and surrounding space, then checks the format.
func ParseTrackingNumber(s string) (TrackingNumber, error) {
	n := TrackingNumber(strings.ToUpper(strings.TrimSpace(s)))
	if err := n.Validate(); err != nil {
		return "", err
	}
	return n, nil
}

// Validate checks the TRK prefix and the upper-case base36 body.
func (n TrackingNumber) Validate() error {
	if n == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}
	if !trackingPattern.MatchString(string(n)) {
		return errs.NewValueIsInvalidErrorWithCause("trackingNumber", fmt.Errorf("%q has an unexpected format", string(n)))
	}
	return nil
}

func (n TrackingNumber) String() string {
	return string(n)
}
