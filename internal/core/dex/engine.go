// Package dex implements the on-ledger automated market maker: per-account
// token balances, constant-product liquidity pools, and the operation
// dispatcher that settles swaps and liquidity changes between the two.
//
// The engine is deterministic and synchronous. Operations arrive one at a
// time, already serialized and authenticated by the hosting layer; each one
// either fully applies or fails with a typed error before the first state
// write.
package dex

import (
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// BridgeAdapter records external deposits and withdrawal intents against the
// ledger. It never performs cross-chain transfer itself.
type BridgeAdapter interface {
	// ProcessDeposit credits an externally verified deposit to caller.
	ProcessDeposit(caller AccountID, tok token.TokenID, amt amount.Amount, txHash string) error

	// RequestWithdrawal debits caller immediately and records a pending
	// withdrawal for the out-of-process bridge operator.
	RequestWithdrawal(caller AccountID, tok token.TokenID, amt amount.Amount, targetAddress string) error
}

// Engine routes operations to state transitions. It performs caller
// resolution and ledger settlement around the pool registry's plan/commit
// steps; all pricing and share math lives in the registry.
type Engine struct {
	state  *State
	bridge BridgeAdapter
}

// NewEngine creates an engine over state. bridge handles the two bridge
// operations; everything else settles purely in the ledger and registry.
func NewEngine(state *State, bridge BridgeAdapter) *Engine {
	return &Engine{state: state, bridge: bridge}
}

// State returns the engine's state aggregate (for queries and persistence).
func (e *Engine) State() *State {
	return e.state
}

// Apply executes one operation for caller. An empty caller fails with
// ErrUnauthenticated before any state is read or written.
func (e *Engine) Apply(caller AccountID, op Operation) (Response, error) {
	if caller == "" {
		return nil, ErrUnauthenticated
	}

	switch op := op.(type) {
	case CreatePool:
		return e.applyCreatePool(caller, op)
	case AddLiquidity:
		return e.applyAddLiquidity(caller, op)
	case RemoveLiquidity:
		return e.applyRemoveLiquidity(caller, op)
	case SwapTokens:
		return e.applySwap(caller, op)
	case ProcessDeposit:
		if err := e.bridge.ProcessDeposit(caller, op.Token, op.Amount, op.TxHash); err != nil {
			return nil, err
		}
		return Ok{}, nil
	case RequestWithdrawal:
		if err := e.bridge.RequestWithdrawal(caller, op.Token, op.Amount, op.TargetAddress); err != nil {
			return nil, err
		}
		return Ok{}, nil
	default:
		return nil, ErrUnknownOperation
	}
}

func (e *Engine) applyCreatePool(caller AccountID, op CreatePool) (Response, error) {
	plan, err := e.state.Pools.planCreate(op.TokenA, op.TokenB, op.AmountA, op.AmountB, op.FeeRateBps)
	if err != nil {
		return nil, err
	}

	if e.state.Ledger.Balance(caller, op.TokenA).Lt(op.AmountA) ||
		e.state.Ledger.Balance(caller, op.TokenB).Lt(op.AmountB) {
		return nil, ErrInsufficientBalance
	}

	// All checks passed; none of the writes below can fail.
	if err := e.state.Ledger.Debit(caller, op.TokenA, op.AmountA); err != nil {
		return nil, err
	}
	if err := e.state.Ledger.Debit(caller, op.TokenB, op.AmountB); err != nil {
		return nil, err
	}
	e.state.Pools.commitCreate(plan)

	return PoolCreated{Success: true}, nil
}

func (e *Engine) applyAddLiquidity(caller AccountID, op AddLiquidity) (Response, error) {
	plan, err := e.state.Pools.planAdd(op.TokenA, op.TokenB, op.AmountA, op.AmountB)
	if err != nil {
		return nil, err
	}

	if e.state.Ledger.Balance(caller, op.TokenA).Lt(op.AmountA) ||
		e.state.Ledger.Balance(caller, op.TokenB).Lt(op.AmountB) {
		return nil, ErrInsufficientBalance
	}

	if err := e.state.Ledger.Debit(caller, op.TokenA, op.AmountA); err != nil {
		return nil, err
	}
	if err := e.state.Ledger.Debit(caller, op.TokenB, op.AmountB); err != nil {
		return nil, err
	}
	e.state.Pools.commitAdd(plan)

	return LiquidityAdded{SharesMinted: plan.sharesMinted}, nil
}

func (e *Engine) applyRemoveLiquidity(caller AccountID, op RemoveLiquidity) (Response, error) {
	plan, err := e.state.Pools.planRemove(op.TokenA, op.TokenB, op.ShareAmount)
	if err != nil {
		return nil, err
	}

	// Payouts are computed against canonical sides; report them back in the
	// caller's token order.
	payoutFirst, payoutSecond := plan.payoutA, plan.payoutB
	if plan.pool.TokenA != op.TokenA {
		payoutFirst, payoutSecond = plan.payoutB, plan.payoutA
	}

	// Make sure both credits fit the Amount domain before any write.
	if _, err := e.state.Ledger.Balance(caller, op.TokenA).Add(payoutFirst); err != nil {
		return nil, ErrArithmeticOverflow
	}
	if _, err := e.state.Ledger.Balance(caller, op.TokenB).Add(payoutSecond); err != nil {
		return nil, ErrArithmeticOverflow
	}

	e.state.Pools.commitRemove(plan)
	if err := e.state.Ledger.Credit(caller, op.TokenA, payoutFirst); err != nil {
		return nil, err
	}
	if err := e.state.Ledger.Credit(caller, op.TokenB, payoutSecond); err != nil {
		return nil, err
	}

	return LiquidityRemoved{AmountA: payoutFirst, AmountB: payoutSecond}, nil
}

func (e *Engine) applySwap(caller AccountID, op SwapTokens) (Response, error) {
	plan, err := e.state.Pools.planSwap(op.FromToken, op.ToToken, op.Amount)
	if err != nil {
		return nil, err
	}

	if e.state.Ledger.Balance(caller, op.FromToken).Lt(op.Amount) {
		return nil, ErrInsufficientBalance
	}
	if _, err := e.state.Ledger.Balance(caller, op.ToToken).Add(plan.quote.AmountOut); err != nil {
		return nil, ErrArithmeticOverflow
	}

	if err := e.state.Ledger.Debit(caller, op.FromToken, op.Amount); err != nil {
		return nil, err
	}
	e.state.Pools.commitSwap(plan)
	if err := e.state.Ledger.Credit(caller, op.ToToken, plan.quote.AmountOut); err != nil {
		return nil, err
	}

	return SwapResult{Received: plan.quote.AmountOut}, nil
}
