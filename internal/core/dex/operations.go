package dex

import (
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// Operation is the dispatcher's input alphabet. Each value carries the full
// payload of one state transition; the caller identity arrives separately,
// already authenticated by the hosting layer.
type Operation interface {
	isOperation()
}

// CreatePool creates a constant-product pool seeded with a two-sided
// deposit from the caller.
type CreatePool struct {
	TokenA     token.TokenID `json:"token_a"`
	TokenB     token.TokenID `json:"token_b"`
	AmountA    amount.Amount `json:"amount_a"`
	AmountB    amount.Amount `json:"amount_b"`
	FeeRateBps uint16        `json:"fee_rate_bps"`
}

// AddLiquidity deposits both tokens into an existing pool and mints shares.
type AddLiquidity struct {
	TokenA  token.TokenID `json:"token_a"`
	TokenB  token.TokenID `json:"token_b"`
	AmountA amount.Amount `json:"amount_a"`
	AmountB amount.Amount `json:"amount_b"`
}

// RemoveLiquidity redeems shares for a proportional slice of both reserves.
type RemoveLiquidity struct {
	TokenA      token.TokenID `json:"token_a"`
	TokenB      token.TokenID `json:"token_b"`
	ShareAmount amount.Amount `json:"share_amount"`
}

// SwapTokens sells Amount of FromToken for ToToken.
type SwapTokens struct {
	FromToken token.TokenID `json:"from_token"`
	ToToken   token.TokenID `json:"to_token"`
	Amount    amount.Amount `json:"amount"`
}

// ProcessDeposit credits an externally bridged deposit to the caller.
type ProcessDeposit struct {
	Token  token.TokenID `json:"token"`
	Amount amount.Amount `json:"amount"`
	TxHash string        `json:"tx_hash"`
}

// RequestWithdrawal debits the caller and records a pending withdrawal for
// the external bridge operator.
type RequestWithdrawal struct {
	Token         token.TokenID `json:"token"`
	Amount        amount.Amount `json:"amount"`
	TargetAddress string        `json:"target_address"`
}

func (CreatePool) isOperation()        {}
func (AddLiquidity) isOperation()      {}
func (RemoveLiquidity) isOperation()   {}
func (SwapTokens) isOperation()        {}
func (ProcessDeposit) isOperation()    {}
func (RequestWithdrawal) isOperation() {}

// Response is the typed outcome of one operation.
type Response interface {
	isResponse()
}

// Ok is the empty success response (bridge operations).
type Ok struct{}

// PoolCreated acknowledges pool creation.
type PoolCreated struct {
	Success bool `json:"success"`
}

// LiquidityAdded reports the shares minted by AddLiquidity.
type LiquidityAdded struct {
	SharesMinted amount.Amount `json:"shares_minted"`
}

// LiquidityRemoved reports both payout amounts, in the caller's token order.
type LiquidityRemoved struct {
	AmountA amount.Amount `json:"amount_a"`
	AmountB amount.Amount `json:"amount_b"`
}

// SwapResult reports the amount the caller received.
type SwapResult struct {
	Received amount.Amount `json:"received"`
}

func (Ok) isResponse()               {}
func (PoolCreated) isResponse()      {}
func (LiquidityAdded) isResponse()   {}
func (LiquidityRemoved) isResponse() {}
func (SwapResult) isResponse()       {}
