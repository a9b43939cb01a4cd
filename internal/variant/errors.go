package variant

import "errors"

var (
	// ErrEmptyAttributeSet means the configured sets expand to zero
	// variants, so the product has nothing purchasable.
	ErrEmptyAttributeSet = errors.New("attribute sets produce no variants")
	ErrInvalidDiscount   = errors.New("invalid discount")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNegativeStock     = errors.New("stock must be zero or positive")
)
