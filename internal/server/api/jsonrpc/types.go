package jsonrpc

import (
	"encoding/json"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// Request is one JSON-RPC 2.0 call.
type Request struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes. Engine errors map onto the implementation-defined
// range with the stable error code string in the data member.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeEngineError    = -32000
)

// PoolInfo is the wire form of one pool.
type PoolInfo struct {
	TokenA      token.TokenID `json:"token_a"`
	TokenB      token.TokenID `json:"token_b"`
	ReserveA    amount.Amount `json:"reserve_a"`
	ReserveB    amount.Amount `json:"reserve_b"`
	TotalShares amount.Amount `json:"total_shares"`
	FeeRateBps  uint16        `json:"fee_rate_bps"`
}

// BalanceInfo is the wire form of one balance entry.
type BalanceInfo struct {
	Token  token.TokenID `json:"token"`
	Amount amount.Amount `json:"amount"`
}

// SwapEstimate is the wire form of a swap quote.
type SwapEstimate struct {
	AmountIn         amount.Amount `json:"amount_in"`
	Fee              amount.Amount `json:"fee"`
	AmountInAfterFee amount.Amount `json:"amount_in_after_fee"`
	AmountOut        amount.Amount `json:"amount_out"`
}

// Method parameter shapes.

type pairParams struct {
	TokenA token.TokenID `json:"token_a"`
	TokenB token.TokenID `json:"token_b"`
}

type balanceParams struct {
	Owner string        `json:"owner"`
	Token token.TokenID `json:"token"`
}

type balancesParams struct {
	Owner string `json:"owner"`
}

type estimateSwapParams struct {
	FromToken token.TokenID `json:"from_token"`
	ToToken   token.TokenID `json:"to_token"`
	Amount    amount.Amount `json:"amount"`
}

type withdrawalsParams struct {
	IncludeProcessed bool `json:"include_processed"`
}

type submitParams struct {
	Caller  string          `json:"caller"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// submitResult wraps a typed engine response with its discriminator.
type submitResult struct {
	Type   string      `json:"type"`
	Result interface{} `json:"result"`
}
