package types

import (
	"math"
)

const (
	// MaxFeeBps is the fee ceiling in basis points.
	MaxFeeBps uint64 = 10_000

	// MaxTimeout is the largest value representable in the request deadline field.
	MaxTimeout uint64 = math.MaxUint32
)

// Params defines the marketplace parameters.
type Params struct {
	// Fee is the protocol fee in basis points.
	Fee                uint64 `json:"fee"`
	MinResponseTimeout uint64 `json:"min_response_timeout"`
	MaxResponseTimeout uint64 `json:"max_response_timeout"`
}

// NewParams creates marketplace params.
func NewParams(fee, minResponseTimeout, maxResponseTimeout uint64) Params {
	return Params{
		Fee:                fee,
		MinResponseTimeout: minResponseTimeout,
		MaxResponseTimeout: maxResponseTimeout,
	}
}

// DefaultParams returns the default marketplace parameters: 0.1% fee and a
// one to five minute priority window.
func DefaultParams() Params {
	return NewParams(10, 60, 300)
}

// Validate checks the params. The order of the checks is part of the API:
// zero timeouts, then fee ceiling, then min/max ordering, then encoding range.
func (p Params) Validate() error {
	if p.MinResponseTimeout == 0 || p.MaxResponseTimeout == 0 {
		return ErrZeroValue.Wrap("response timeouts must be non-zero")
	}
	if p.Fee > MaxFeeBps {
		return ErrOverflow.Wrapf("fee %d exceeds %d bps", p.Fee, MaxFeeBps)
	}
	if p.MinResponseTimeout > p.MaxResponseTimeout {
		return ErrOverflow.Wrapf("min response timeout %d exceeds max %d", p.MinResponseTimeout, p.MaxResponseTimeout)
	}
	if p.MaxResponseTimeout > MaxTimeout {
		return ErrOverflow.Wrapf("max response timeout %d exceeds %d", p.MaxResponseTimeout, MaxTimeout)
	}
	return nil
}
