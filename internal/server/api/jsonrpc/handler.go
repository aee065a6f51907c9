package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goDEXd/internal/bridge"
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// Backend is the node surface the RPC layer calls into. The implementation
// serializes access to the engine; handlers never touch engine state
// directly.
type Backend interface {
	Pools() []*dex.Pool
	Pool(x, y token.TokenID) (*dex.Pool, bool)
	Balance(owner dex.AccountID, tok token.TokenID) amount.Amount
	Balances(owner dex.AccountID) []dex.BalanceEntry
	EstimateSwap(from, to token.TokenID, amountIn amount.Amount) (dex.SwapQuote, error)
	Withdrawals(includeProcessed bool) []bridge.WithdrawalRequest
	Submit(caller dex.AccountID, op dex.Operation) (dex.Response, error)
}

// DexHandler routes dex_* JSON-RPC methods.
type DexHandler struct {
	backend Backend
	methods map[string]func(json.RawMessage) (interface{}, *RPCError)
}

// NewDexHandler initializes a handler over backend.
func NewDexHandler(backend Backend) *DexHandler {
	h := &DexHandler{
		backend: backend,
		methods: make(map[string]func(json.RawMessage) (interface{}, *RPCError)),
	}

	// Register available methods.
	h.methods["dex_pools"] = h.handlePools
	h.methods["dex_pool"] = h.handlePool
	h.methods["dex_balance"] = h.handleBalance
	h.methods["dex_balances"] = h.handleBalances
	h.methods["dex_estimateSwap"] = h.handleEstimateSwap
	h.methods["dex_withdrawals"] = h.handleWithdrawals
	h.methods["dex_submit"] = h.handleSubmit

	return h
}

// Handle dispatches a JSON-RPC method to the appropriate handler.
func (h *DexHandler) Handle(method string, params json.RawMessage) (interface{}, *RPCError) {
	handler, exists := h.methods[method]
	if !exists {
		return nil, &RPCError{Code: codeMethodNotFound, Message: fmt.Sprintf("method %s not found", method)}
	}
	return handler(params)
}

func decodeParams(params json.RawMessage, v interface{}) *RPCError {
	if len(params) == 0 {
		return &RPCError{Code: codeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	return nil
}

// engineError wraps a dex error with its stable code string.
func engineError(err error) *RPCError {
	return &RPCError{
		Code:    codeEngineError,
		Message: err.Error(),
		Data:    dex.ErrorCode(err),
	}
}

func poolInfo(p *dex.Pool) PoolInfo {
	return PoolInfo{
		TokenA:      p.TokenA,
		TokenB:      p.TokenB,
		ReserveA:    p.ReserveA,
		ReserveB:    p.ReserveB,
		TotalShares: p.TotalShares,
		FeeRateBps:  p.FeeRateBps,
	}
}

func (h *DexHandler) handlePools(_ json.RawMessage) (interface{}, *RPCError) {
	pools := h.backend.Pools()
	out := make([]PoolInfo, 0, len(pools))
	for _, p := range pools {
		out = append(out, poolInfo(p))
	}
	return out, nil
}

func (h *DexHandler) handlePool(params json.RawMessage) (interface{}, *RPCError) {
	var p pairParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	pool, ok := h.backend.Pool(p.TokenA, p.TokenB)
	if !ok {
		return nil, engineError(dex.ErrPoolNotFound)
	}
	return poolInfo(pool), nil
}

func (h *DexHandler) handleBalance(params json.RawMessage) (interface{}, *RPCError) {
	var p balanceParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	amt := h.backend.Balance(dex.AccountID(p.Owner), p.Token)
	return BalanceInfo{Token: p.Token, Amount: amt}, nil
}

func (h *DexHandler) handleBalances(params json.RawMessage) (interface{}, *RPCError) {
	var p balancesParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	entries := h.backend.Balances(dex.AccountID(p.Owner))
	out := make([]BalanceInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, BalanceInfo{Token: e.Token, Amount: e.Amount})
	}
	return out, nil
}

func (h *DexHandler) handleEstimateSwap(params json.RawMessage) (interface{}, *RPCError) {
	var p estimateSwapParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	quote, err := h.backend.EstimateSwap(p.FromToken, p.ToToken, p.Amount)
	if err != nil {
		return nil, engineError(err)
	}
	return SwapEstimate{
		AmountIn:         quote.AmountIn,
		Fee:              quote.Fee,
		AmountInAfterFee: quote.AmountInAfterFee,
		AmountOut:        quote.AmountOut,
	}, nil
}

func (h *DexHandler) handleWithdrawals(params json.RawMessage) (interface{}, *RPCError) {
	var p withdrawalsParams
	if len(params) > 0 {
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
	}
	return h.backend.Withdrawals(p.IncludeProcessed), nil
}

func (h *DexHandler) handleSubmit(params json.RawMessage) (interface{}, *RPCError) {
	var p submitParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}

	op, rpcErr := decodeOperation(p.Type, p.Payload)
	if rpcErr != nil {
		return nil, rpcErr
	}

	resp, err := h.backend.Submit(dex.AccountID(p.Caller), op)
	if err != nil {
		return nil, engineError(err)
	}
	return wrapResponse(resp), nil
}

func decodeOperation(opType string, payload json.RawMessage) (dex.Operation, *RPCError) {
	unmarshal := func(v dex.Operation) (dex.Operation, *RPCError) {
		if len(payload) == 0 {
			return nil, &RPCError{Code: codeInvalidParams, Message: "missing payload"}
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
		}
		return v, nil
	}

	switch opType {
	case "create_pool":
		op, rpcErr := unmarshal(&dex.CreatePool{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.CreatePool), nil
	case "add_liquidity":
		op, rpcErr := unmarshal(&dex.AddLiquidity{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.AddLiquidity), nil
	case "remove_liquidity":
		op, rpcErr := unmarshal(&dex.RemoveLiquidity{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.RemoveLiquidity), nil
	case "swap":
		op, rpcErr := unmarshal(&dex.SwapTokens{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.SwapTokens), nil
	case "process_deposit":
		op, rpcErr := unmarshal(&dex.ProcessDeposit{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.ProcessDeposit), nil
	case "request_withdrawal":
		op, rpcErr := unmarshal(&dex.RequestWithdrawal{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		return *op.(*dex.RequestWithdrawal), nil
	default:
		return nil, &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown operation type %q", opType)}
	}
}

func wrapResponse(resp dex.Response) submitResult {
	switch r := resp.(type) {
	case dex.PoolCreated:
		return submitResult{Type: "pool_created", Result: r}
	case dex.LiquidityAdded:
		return submitResult{Type: "liquidity_added", Result: r}
	case dex.LiquidityRemoved:
		return submitResult{Type: "liquidity_removed", Result: r}
	case dex.SwapResult:
		return submitResult{Type: "swap_result", Result: r}
	default:
		return submitResult{Type: "ok", Result: struct{}{}}
	}
}
