package types

import (
	"errors"
	"fmt"
)

// Errors without a payload. Compare with errors.Is.
var (
	ErrAskBidPriceMismatch           = errors.New("Ask order price does not match Bid order price")
	ErrBidOrderNotFound              = errors.New("Bid order not found")
	ErrBidFeeAccountMissing          = errors.New("Bid fee account missing")
	ErrCancelWithFunds               = errors.New("Cannot send funds when canceling order")
	ErrExecuteWithFunds              = errors.New("Cannot send funds when executing match")
	ErrExpireWithFunds               = errors.New("Cannot send funds when expiring order")
	ErrInconvertibleBaseDenom        = errors.New("Inconvertible base denomination")
	ErrInvalidExecutePrice           = errors.New("Execute price must be either the ask or bid price")
	ErrInvalidExecuteSize            = errors.New("Execute size must be less than or equal to the ask and bid remaining size")
	ErrInvalidPricePrecisionSizePair = errors.New("Size increment must be a multiple of (10 ^ price precision)")
	ErrNonIntegerTotal               = errors.New("Total (price * size) must be an integer")
	ErrSentFundsOrderMismatch        = errors.New("Sent funds does not match order")
	ErrTotalOverflow                 = errors.New("Total (price * size) exceeds max allowed")
	ErrUnauthorized                  = errors.New("Unauthorized")
	ErrUnsupportedQuoteDenom         = errors.New("Unsupported quote denomination")
	ErrContractNotInstantiated       = errors.New("contract info not found")
)

type (
	// ErrInvalidFields is returned when one or more message fields fail
	// validation. Fields are reported in the order they were checked.
	ErrInvalidFields struct {
		Fields []string
	}

	// ErrInvalidFeeSize is returned when a bid carries the wrong fee.
	ErrInvalidFeeSize struct {
		FeeRate string
	}

	// ErrAskOrderNotReady is returned when a convertible ask has not been
	// approved yet.
	ErrAskOrderNotReady struct {
		CurrentStatus string
	}

	// ErrAskOrderReady is returned when approving an ask that is already
	// approved.
	ErrAskOrderReady struct {
		Approver string
	}

	// ErrLoadOrderFailed wraps the storage error encountered while loading an
	// order.
	ErrLoadOrderFailed struct {
		Err error
	}

	// ErrUnsupportedUpgrade is returned when the stored state cannot be
	// brought to, or operated at, the running version.
	ErrUnsupportedUpgrade struct {
		SourceVersion string
		TargetVersion string
	}
)

// NewErrInvalidFields returns ErrInvalidFields for the given fields.
func NewErrInvalidFields(fields ...string) ErrInvalidFields {
	return ErrInvalidFields{Fields: fields}
}

func (e ErrInvalidFields) Error() string {
	return fmt.Sprintf("Invalid fields: %q", e.Fields)
}

func (e ErrInvalidFeeSize) Error() string {
	return fmt.Sprintf("Fee size is not: %q%% of total", e.FeeRate)
}

func (e ErrAskOrderNotReady) Error() string {
	return fmt.Sprintf("Ask order not ready: %q", e.CurrentStatus)
}

func (e ErrAskOrderReady) Error() string {
	return fmt.Sprintf("Ask order already ready: %q", e.Approver)
}

func (e ErrLoadOrderFailed) Error() string {
	return fmt.Sprintf("Failed to load order: %v", e.Err)
}

func (e ErrLoadOrderFailed) Unwrap() error {
	return e.Err
}

func (e ErrUnsupportedUpgrade) Error() string {
	return fmt.Sprintf("Unsupported upgrade: %q => %q", e.SourceVersion, e.TargetVersion)
}

// fieldErrors accumulates invalid field names before a single error is
// returned.
type fieldErrors []string

func (f *fieldErrors) add(field string) {
	*f = append(*f, field)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return ErrInvalidFields{Fields: []string(f)}
}
