package dex

import "errors"

// Engine error taxonomy. Every failure an operation can produce is one of
// these sentinels (possibly wrapped); the dispatcher surfaces them verbatim
// as stable string codes. All are synchronous validation failures and none is
// retryable.
var (
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrFeeRateTooHigh            = errors.New("fee rate too high")
	ErrPoolNotFound              = errors.New("pool not found")
	ErrPoolAlreadyExists         = errors.New("pool already exists")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrInsufficientPoolReserves  = errors.New("insufficient pool reserves")
	ErrInvalidShareAmount        = errors.New("invalid share amount")
	ErrZeroReserve               = errors.New("zero reserve")
	ErrSwapTooSmall              = errors.New("swap too small")
	ErrInsufficientOutputReserve = errors.New("insufficient output reserve")
	ErrArithmeticOverflow        = errors.New("arithmetic overflow")
	ErrUnauthenticated           = errors.New("unauthenticated")
)

// ErrUnknownOperation reports an Operation type the dispatcher has no arm
// for. It is deliberately outside the taxonomy above: reaching it is a wiring
// bug, not caller misuse, so ErrorCode surfaces it as "InternalError".
var ErrUnknownOperation = errors.New("unknown operation type")

// errorCodes maps taxonomy sentinels to the stable codes exposed on the
// operation surface.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrFeeRateTooHigh, "FeeRateTooHigh"},
	{ErrPoolNotFound, "PoolNotFound"},
	{ErrPoolAlreadyExists, "PoolAlreadyExists"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrInsufficientPoolReserves, "InsufficientPoolReserves"},
	{ErrInvalidShareAmount, "InvalidShareAmount"},
	{ErrZeroReserve, "ZeroReserve"},
	{ErrSwapTooSmall, "SwapTooSmall"},
	{ErrInsufficientOutputReserve, "InsufficientOutputReserve"},
	{ErrArithmeticOverflow, "ArithmeticOverflow"},
	{ErrUnauthenticated, "Unauthenticated"},
}

// ErrorCode returns the stable code for an engine error, or "InternalError"
// for anything outside the taxonomy (which indicates an engine bug, not
// caller misuse).
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "InternalError"
}
