package blackjack

import "errors"

// Failure kinds reported by round actions. Detailed errors wrap one of these,
// so callers classify with errors.Is.
var (
	ErrWrongPhase        = errors.New("wrong phase")
	ErrHandNotEligible   = errors.New("hand not eligible")
	ErrInvalidHandIndex  = errors.New("invalid hand index")
	ErrInvalidBetShape   = errors.New("invalid bet shape")
	ErrBetOutOfRange     = errors.New("bet out of range")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// Kind returns the sentinel an error wraps, or nil if it wraps none
func Kind(err error) error {
	for _, kind := range []error{
		ErrWrongPhase,
		ErrHandNotEligible,
		ErrInvalidHandIndex,
		ErrInvalidBetShape,
		ErrBetOutOfRange,
		ErrInsufficientChips,
		ErrMalformedSnapshot,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
