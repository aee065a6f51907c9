package dex

import (
	"errors"
	"sort"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// AccountID is an already-authenticated caller identity. The hosting layer
// resolves it before an operation reaches the engine; the engine never
// inspects credentials.
type AccountID string

// BalanceKey addresses one balance entry.
type BalanceKey struct {
	Owner AccountID
	Token token.TokenID
}

// Ledger is the balance ledger: (owner, token) -> Amount. A missing entry
// means balance zero. Entries are created lazily on first credit and never
// deleted; zero is a valid steady state.
//
// Debit is the canonical spend primitive. No other component mutates a
// balance directly.
type Ledger struct {
	balances map[BalanceKey]amount.Amount
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[BalanceKey]amount.Amount)}
}

// Balance returns the balance of (owner, token), zero if absent.
func (l *Ledger) Balance(owner AccountID, tok token.TokenID) amount.Amount {
	return l.balances[BalanceKey{Owner: owner, Token: tok}]
}

// Credit adds amt to the (owner, token) balance, creating the entry if
// absent. Fails with ErrArithmeticOverflow if the sum leaves the Amount
// domain; the balance is unchanged on failure.
func (l *Ledger) Credit(owner AccountID, tok token.TokenID, amt amount.Amount) error {
	key := BalanceKey{Owner: owner, Token: tok}
	sum, err := l.balances[key].Add(amt)
	if err != nil {
		return ErrArithmeticOverflow
	}
	l.balances[key] = sum
	return nil
}

// Debit subtracts amt from the (owner, token) balance. Fails with
// ErrInsufficientBalance if the balance is smaller than amt; the subtraction
// is exact, never clamped.
func (l *Ledger) Debit(owner AccountID, tok token.TokenID, amt amount.Amount) error {
	key := BalanceKey{Owner: owner, Token: tok}
	diff, err := l.balances[key].Sub(amt)
	if err != nil {
		if errors.Is(err, amount.ErrUnderflow) {
			return ErrInsufficientBalance
		}
		return err
	}
	l.balances[key] = diff
	return nil
}

// BalanceEntry is one (token, amount) pair of an owner.
type BalanceEntry struct {
	Token  token.TokenID
	Amount amount.Amount
}

// Entries returns all balances of one owner, sorted by token order.
// Zero-valued entries are included; they are real entries, not absence.
func (l *Ledger) Entries(owner AccountID) []BalanceEntry {
	var out []BalanceEntry
	for k, v := range l.balances {
		if k.Owner == owner {
			out = append(out, BalanceEntry{Token: k.Token, Amount: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Token.Less(out[j].Token)
	})
	return out
}

// ForEach visits every balance entry. Iteration order is unspecified.
func (l *Ledger) ForEach(fn func(key BalanceKey, amt amount.Amount) bool) {
	for k, v := range l.balances {
		if !fn(k, v) {
			return
		}
	}
}

// setBalance installs a balance entry directly. Used only when restoring
// persisted state.
func (l *Ledger) setBalance(key BalanceKey, amt amount.Amount) {
	l.balances[key] = amt
}
