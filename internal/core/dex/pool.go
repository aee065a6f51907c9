package dex

import (
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

const (
	// BpsDenominator is 100% in basis points.
	BpsDenominator = 10000

	// MaxFeeRateBps caps the fee a pool can be created with (10%).
	MaxFeeRateBps = 1000
)

// PairKey is the canonical identity of a pool: the token pair stored with
// A < B under the TokenID order, so (X,Y) and (Y,X) resolve identically.
type PairKey struct {
	A token.TokenID
	B token.TokenID
}

// Canonicalize returns the PairKey for two tokens in either order.
func Canonicalize(x, y token.TokenID) PairKey {
	if y.Less(x) {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// Key renders a stable string form usable as a storage key component.
func (k PairKey) Key() string {
	return k.A.Key() + "|" + k.B.Key()
}

// Pool is one constant-product trading pair. TokenA < TokenB always holds;
// once created a pool is never deleted, though it may drain.
type Pool struct {
	TokenA      token.TokenID
	TokenB      token.TokenID
	ReserveA    amount.Amount
	ReserveB    amount.Amount
	TotalShares amount.Amount
	FeeRateBps  uint16
}

// PairKey returns the pool's canonical identity.
func (p *Pool) PairKey() PairKey {
	return PairKey{A: p.TokenA, B: p.TokenB}
}

// reserves returns the (input, output) reserves for a swap selling from.
// from must be one of the pool's tokens.
func (p *Pool) reserves(from token.TokenID) (in, out amount.Amount) {
	if from == p.TokenA {
		return p.ReserveA, p.ReserveB
	}
	return p.ReserveB, p.ReserveA
}

// reserveOf returns the pool's holding of tok.
func (p *Pool) reserveOf(tok token.TokenID) amount.Amount {
	if tok == p.TokenA {
		return p.ReserveA
	}
	return p.ReserveB
}

// has reports whether tok is one of the pool's two tokens.
func (p *Pool) has(tok token.TokenID) bool {
	return tok == p.TokenA || tok == p.TokenB
}

// SwapQuote is the outcome of pricing one swap against a pool. The fee stays
// in the pool: the input reserve grows by the full AmountIn while the output
// is priced on AmountIn less the fee, which is what ratchets the invariant
// product upward for fee-bearing pools.
type SwapQuote struct {
	AmountIn         amount.Amount
	Fee              amount.Amount
	AmountInAfterFee amount.Amount
	AmountOut        amount.Amount
}

// quoteSwap prices selling amountIn of from into the pool without mutating
// anything. It is the single pricing path: Swap commits exactly this quote
// and EstimateSwap returns it verbatim.
func quoteSwap(p *Pool, from token.TokenID, amountIn amount.Amount) (SwapQuote, error) {
	if amountIn.IsZero() {
		return SwapQuote{}, ErrInvalidAmount
	}

	inputReserve, outputReserve := p.reserves(from)
	if inputReserve.IsZero() {
		return SwapQuote{}, ErrZeroReserve
	}

	fee, err := amount.MulDiv(amountIn, amount.FromAttos(uint64(p.FeeRateBps)), amount.FromAttos(BpsDenominator))
	if err != nil {
		return SwapQuote{}, ErrArithmeticOverflow
	}
	inAfterFee, err := amountIn.Sub(fee)
	if err != nil {
		// fee <= amountIn always holds for FeeRateBps <= BpsDenominator
		return SwapQuote{}, ErrArithmeticOverflow
	}

	denom, err := inputReserve.Add(inAfterFee)
	if err != nil {
		return SwapQuote{}, ErrArithmeticOverflow
	}
	out, err := amount.MulDiv(outputReserve, inAfterFee, denom)
	if err != nil {
		return SwapQuote{}, ErrArithmeticOverflow
	}

	if out.IsZero() && !inAfterFee.IsZero() {
		return SwapQuote{}, ErrSwapTooSmall
	}
	if out.Cmp(outputReserve) >= 0 {
		// The output side must never fully drain.
		return SwapQuote{}, ErrInsufficientOutputReserve
	}

	return SwapQuote{
		AmountIn:         amountIn,
		Fee:              fee,
		AmountInAfterFee: inAfterFee,
		AmountOut:        out,
	}, nil
}
