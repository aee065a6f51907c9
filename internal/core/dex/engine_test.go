package dex

import (
	"errors"
	"testing"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// recordingBridge captures bridge calls and credits/debits the ledger the way
// the real adapter does, so dispatcher tests stay self-contained.
type recordingBridge struct {
	state       *State
	deposits    []string
	withdrawals []string
}

func (b *recordingBridge) ProcessDeposit(caller AccountID, tok token.TokenID, amt amount.Amount, txHash string) error {
	if err := b.state.Ledger.Credit(caller, tok, amt); err != nil {
		return err
	}
	b.deposits = append(b.deposits, txHash)
	return nil
}

func (b *recordingBridge) RequestWithdrawal(caller AccountID, tok token.TokenID, amt amount.Amount, target string) error {
	if err := b.state.Ledger.Debit(caller, tok, amt); err != nil {
		return err
	}
	b.withdrawals = append(b.withdrawals, target)
	return nil
}

func newTestEngine() (*Engine, *recordingBridge) {
	state := NewState()
	bridge := &recordingBridge{state: state}
	return NewEngine(state, bridge), bridge
}

func fund(t *testing.T, e *Engine, who AccountID, tok token.TokenID, attos uint64) {
	t.Helper()
	if err := e.State().Ledger.Credit(who, tok, amount.FromAttos(attos)); err != nil {
		t.Fatalf("fund %s: %v", who, err)
	}
}

func TestApplyRequiresCaller(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Apply("", SwapTokens{FromToken: wETH, ToToken: wUSDC, Amount: amount.FromAttos(1)})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

type bogusOperation struct{}

func (bogusOperation) isOperation() {}

func TestApplyUnknownOperationType(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Apply("alice", bogusOperation{})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("err = %v, want ErrUnknownOperation", err)
	}
	// A dispatcher gap is an internal condition, not a caller amount error.
	if code := ErrorCode(err); code != "InternalError" {
		t.Fatalf("code = %q, want InternalError", code)
	}
}

func TestCreatePoolDebitsBothSides(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "alice", wETH, 1500)
	fund(t, e, "alice", wUSDC, 1500)

	resp, err := e.Apply("alice", CreatePool{
		TokenA:     wETH,
		TokenB:     wUSDC,
		AmountA:    amount.FromAttos(1000),
		AmountB:    amount.FromAttos(1000),
		FeeRateBps: 30,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if created, ok := resp.(PoolCreated); !ok || !created.Success {
		t.Fatalf("resp = %#v, want PoolCreated{Success: true}", resp)
	}

	if got := e.State().Ledger.Balance("alice", wETH); !got.Equal(amount.FromAttos(500)) {
		t.Fatalf("wETH balance = %s, want 500", got)
	}
	if got := e.State().Ledger.Balance("alice", wUSDC); !got.Equal(amount.FromAttos(500)) {
		t.Fatalf("wUSDC balance = %s, want 500", got)
	}
	if _, ok := e.State().Pools.Get(wETH, wUSDC); !ok {
		t.Fatal("pool missing after create")
	}
}

func TestCreatePoolInsufficientBalanceIsAtomic(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "alice", wETH, 1000)
	fund(t, e, "alice", wUSDC, 999)

	_, err := e.Apply("alice", CreatePool{
		TokenA:  wETH,
		TokenB:  wUSDC,
		AmountA: amount.FromAttos(1000),
		AmountB: amount.FromAttos(1000),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	// Neither side may have been debited and no pool may exist.
	if got := e.State().Ledger.Balance("alice", wETH); !got.Equal(amount.FromAttos(1000)) {
		t.Fatalf("wETH balance = %s, want 1000", got)
	}
	if got := e.State().Ledger.Balance("alice", wUSDC); !got.Equal(amount.FromAttos(999)) {
		t.Fatalf("wUSDC balance = %s, want 999", got)
	}
	if _, ok := e.State().Pools.Get(wETH, wUSDC); ok {
		t.Fatal("pool must not exist after failed create")
	}
}

func TestSwapSettlesLedgerAndReserves(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "alice", wETH, 2000)
	fund(t, e, "alice", wUSDC, 1000)
	fund(t, e, "bob", wETH, 1000)

	if _, err := e.Apply("alice", CreatePool{
		TokenA:     wETH,
		TokenB:     wUSDC,
		AmountA:    amount.FromAttos(1000),
		AmountB:    amount.FromAttos(1000),
		FeeRateBps: 30,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := e.Apply("bob", SwapTokens{
		FromToken: wETH,
		ToToken:   wUSDC,
		Amount:    amount.FromAttos(1000),
	})
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	swap, ok := resp.(SwapResult)
	if !ok {
		t.Fatalf("resp = %#v, want SwapResult", resp)
	}
	if !swap.Received.Equal(amount.FromAttos(499)) {
		t.Fatalf("received = %s, want 499", swap.Received)
	}

	if got := e.State().Ledger.Balance("bob", wETH); !got.IsZero() {
		t.Fatalf("bob wETH = %s, want 0", got)
	}
	if got := e.State().Ledger.Balance("bob", wUSDC); !got.Equal(amount.FromAttos(499)) {
		t.Fatalf("bob wUSDC = %s, want 499", got)
	}

	// The full input, fee included, stays in the pool.
	p, _ := e.State().Pools.Get(wETH, wUSDC)
	if !p.reserveOf(wETH).Equal(amount.FromAttos(2000)) {
		t.Fatalf("input reserve = %s, want 2000", p.reserveOf(wETH))
	}
	if !p.reserveOf(wUSDC).Equal(amount.FromAttos(501)) {
		t.Fatalf("output reserve = %s, want 501", p.reserveOf(wUSDC))
	}
}

func TestSwapMissingPoolLeavesBalances(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "bob", wETH, 1000)

	_, err := e.Apply("bob", SwapTokens{FromToken: wETH, ToToken: wBTC, Amount: amount.FromAttos(100)})
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("err = %v, want ErrPoolNotFound", err)
	}
	if got := e.State().Ledger.Balance("bob", wETH); !got.Equal(amount.FromAttos(1000)) {
		t.Fatalf("balance = %s, want 1000", got)
	}
}

func TestLiquidityRoundTrip(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "alice", wETH, 1000)
	fund(t, e, "alice", wUSDC, 1000)
	fund(t, e, "bob", wETH, 500)
	fund(t, e, "bob", wUSDC, 500)

	if _, err := e.Apply("alice", CreatePool{
		TokenA:  wETH,
		TokenB:  wUSDC,
		AmountA: amount.FromAttos(1000),
		AmountB: amount.FromAttos(1000),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := e.Apply("bob", AddLiquidity{
		TokenA:  wETH,
		TokenB:  wUSDC,
		AmountA: amount.FromAttos(500),
		AmountB: amount.FromAttos(500),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	added, ok := resp.(LiquidityAdded)
	if !ok || !added.SharesMinted.Equal(amount.FromAttos(500)) {
		t.Fatalf("resp = %#v, want 500 shares", resp)
	}

	resp, err = e.Apply("bob", RemoveLiquidity{
		TokenA:      wETH,
		TokenB:      wUSDC,
		ShareAmount: amount.FromAttos(500),
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	removed, ok := resp.(LiquidityRemoved)
	if !ok {
		t.Fatalf("resp = %#v, want LiquidityRemoved", resp)
	}
	// With no trades in between bob gets his deposit back exactly.
	if !removed.AmountA.Equal(amount.FromAttos(500)) || !removed.AmountB.Equal(amount.FromAttos(500)) {
		t.Fatalf("payout = %s/%s, want 500/500", removed.AmountA, removed.AmountB)
	}
	if got := e.State().Ledger.Balance("bob", wETH); !got.Equal(amount.FromAttos(500)) {
		t.Fatalf("bob wETH = %s, want 500", got)
	}
	if got := e.State().Ledger.Balance("bob", wUSDC); !got.Equal(amount.FromAttos(500)) {
		t.Fatalf("bob wUSDC = %s, want 500", got)
	}
}

func TestRemoveLiquidityReversedTokenOrder(t *testing.T) {
	e, _ := newTestEngine()
	fund(t, e, "alice", wETH, 100)
	fund(t, e, "alice", wUSDC, 400)

	if _, err := e.Apply("alice", CreatePool{
		TokenA:  wETH,
		TokenB:  wUSDC,
		AmountA: amount.FromAttos(100),
		AmountB: amount.FromAttos(400),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Naming the pair in reverse order still resolves the same pool, and the
	// payouts come back matched to the caller's order.
	resp, err := e.Apply("alice", RemoveLiquidity{
		TokenA:      wUSDC,
		TokenB:      wETH,
		ShareAmount: amount.FromAttos(100),
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	removed := resp.(LiquidityRemoved)
	if !removed.AmountA.Equal(amount.FromAttos(400)) {
		t.Fatalf("first payout (wUSDC) = %s, want 400", removed.AmountA)
	}
	if !removed.AmountB.Equal(amount.FromAttos(100)) {
		t.Fatalf("second payout (wETH) = %s, want 100", removed.AmountB)
	}
}

func TestBridgeOperationsDispatch(t *testing.T) {
	e, bridge := newTestEngine()

	resp, err := e.Apply("alice", ProcessDeposit{
		Token:  wETH,
		Amount: amount.FromAttos(777),
		TxHash: "0xabc",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, ok := resp.(Ok); !ok {
		t.Fatalf("resp = %#v, want Ok", resp)
	}
	if got := e.State().Ledger.Balance("alice", wETH); !got.Equal(amount.FromAttos(777)) {
		t.Fatalf("balance = %s, want 777", got)
	}

	if _, err := e.Apply("alice", RequestWithdrawal{
		Token:         wETH,
		Amount:        amount.FromAttos(700),
		TargetAddress: "0xdead",
	}); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if got := e.State().Ledger.Balance("alice", wETH); !got.Equal(amount.FromAttos(77)) {
		t.Fatalf("balance = %s, want 77", got)
	}

	if len(bridge.deposits) != 1 || bridge.deposits[0] != "0xabc" {
		t.Fatalf("deposits = %v", bridge.deposits)
	}
	if len(bridge.withdrawals) != 1 || bridge.withdrawals[0] != "0xdead" {
		t.Fatalf("withdrawals = %v", bridge.withdrawals)
	}
}
