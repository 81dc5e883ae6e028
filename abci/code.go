package abci

import (
	"errors"

	abcitypes "github.com/tendermint/tendermint/abci/types"

	tmmath "github.com/tendermint/ats/libs/math"
	"github.com/tendermint/ats/store"
	"github.com/tendermint/ats/types"
)

// Codespace qualifies every non-zero code returned by the application.
const Codespace = "ats"

// Return codes for the application. The values are part of the wire
// contract with clients and must not be renumbered.
const (
	CodeTypeOK                 uint32 = abcitypes.CodeTypeOK
	CodeTypeEncodingError      uint32 = 1
	CodeTypeInvalidFields      uint32 = 2
	CodeTypeUnauthorized       uint32 = 3
	CodeTypeFundsMismatch      uint32 = 4
	CodeTypeUnexpectedFunds    uint32 = 5
	CodeTypeInvalidFee         uint32 = 6
	CodeTypeUnsupportedDenom   uint32 = 7
	CodeTypePriceMismatch      uint32 = 8
	CodeTypeInvalidSize        uint32 = 9
	CodeTypeOrderState         uint32 = 10
	CodeTypeOrderNotFound      uint32 = 11
	CodeTypeArithmetic         uint32 = 12
	CodeTypeFeeAccountMissing  uint32 = 13
	CodeTypeUnsupportedUpgrade uint32 = 14
	CodeTypeNotInstantiated    uint32 = 15
	CodeTypeUnknownRequest     uint32 = 16
	CodeTypeInternalError      uint32 = 100
)

// ErrorCode maps an error returned by the engine to its return code.
func ErrorCode(err error) uint32 {
	var (
		invalidFields  types.ErrInvalidFields
		invalidFeeSize types.ErrInvalidFeeSize
		notReady       types.ErrAskOrderNotReady
		alreadyReady   types.ErrAskOrderReady
		loadFailed     types.ErrLoadOrderFailed
		unsupported    types.ErrUnsupportedUpgrade
	)

	switch {
	case err == nil:
		return CodeTypeOK
	case errors.Is(err, types.ErrMalformedTx), errors.Is(err, types.ErrEmptyMsg):
		return CodeTypeEncodingError
	case errors.As(err, &invalidFields):
		return CodeTypeInvalidFields
	case errors.Is(err, types.ErrUnauthorized):
		return CodeTypeUnauthorized
	case errors.Is(err, types.ErrSentFundsOrderMismatch):
		return CodeTypeFundsMismatch
	case errors.Is(err, types.ErrCancelWithFunds),
		errors.Is(err, types.ErrExecuteWithFunds),
		errors.Is(err, types.ErrExpireWithFunds):
		return CodeTypeUnexpectedFunds
	case errors.As(err, &invalidFeeSize):
		return CodeTypeInvalidFee
	case errors.Is(err, types.ErrUnsupportedQuoteDenom), errors.Is(err, types.ErrInconvertibleBaseDenom):
		return CodeTypeUnsupportedDenom
	case errors.Is(err, types.ErrAskBidPriceMismatch), errors.Is(err, types.ErrInvalidExecutePrice):
		return CodeTypePriceMismatch
	case errors.Is(err, types.ErrInvalidExecuteSize):
		return CodeTypeInvalidSize
	case errors.As(err, &notReady), errors.As(err, &alreadyReady):
		return CodeTypeOrderState
	case errors.As(err, &loadFailed), errors.Is(err, types.ErrBidOrderNotFound), errors.Is(err, store.ErrNotFound):
		return CodeTypeOrderNotFound
	case errors.Is(err, types.ErrNonIntegerTotal),
		errors.Is(err, types.ErrTotalOverflow),
		errors.Is(err, types.ErrInvalidPricePrecisionSizePair),
		errors.Is(err, tmmath.ErrOverflowUint128):
		return CodeTypeArithmetic
	case errors.Is(err, types.ErrBidFeeAccountMissing):
		return CodeTypeFeeAccountMissing
	case errors.As(err, &unsupported):
		return CodeTypeUnsupportedUpgrade
	case errors.Is(err, types.ErrContractNotInstantiated):
		return CodeTypeNotInstantiated
	case errors.Is(err, errUnknownPath):
		return CodeTypeUnknownRequest
	}
	return CodeTypeInternalError
}
