// Package bridge records the flow of value between external chains and the
// in-ledger balances. Deposits arrive as already-verified events and are
// credited exactly once per transaction hash; withdrawals debit immediately
// and queue a request for the out-of-process bridge operator.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

var (
	// ErrInvalidTxHash rejects deposit events without a source transaction.
	ErrInvalidTxHash = errors.New("bridge: deposit transaction hash is empty")

	// ErrInvalidTarget rejects withdrawals without a destination address.
	ErrInvalidTarget = errors.New("bridge: withdrawal target address is empty")

	// ErrWithdrawalNotFound reports an unknown withdrawal id.
	ErrWithdrawalNotFound = errors.New("bridge: withdrawal not found")
)

// WithdrawalRequest is one queued transfer back to an external chain. The
// engine only records it; the bridge operator executes it and flips
// Processed afterwards.
type WithdrawalRequest struct {
	ID            uint64        `json:"id"`
	User          dex.AccountID `json:"user"`
	Token         token.TokenID `json:"token"`
	Amount        amount.Amount `json:"amount"`
	TargetAddress string        `json:"target_address"`
	CreatedAt     time.Time     `json:"created_at"`
	Processed     bool          `json:"processed"`
}

// Journal durably records withdrawal requests. Implementations live in the
// storage layer; the adapter only needs append, update and scan.
type Journal interface {
	InsertWithdrawal(ctx context.Context, w WithdrawalRequest) error
	MarkWithdrawalProcessed(ctx context.Context, id uint64) error
	ListWithdrawals(ctx context.Context, includeProcessed bool) ([]WithdrawalRequest, error)
}

// Adapter implements the engine's bridge hooks over a ledger, an in-memory
// deposit dedupe set and an optional withdrawal journal.
type Adapter struct {
	mu sync.Mutex

	ledger  *dex.Ledger
	journal Journal
	log     *slog.Logger

	seenDeposits map[string]struct{}
	withdrawals  map[uint64]*WithdrawalRequest
	nextID       uint64

	now func() time.Time
}

// NewAdapter creates an adapter over ledger. journal may be nil, in which
// case withdrawal requests are kept in memory only.
func NewAdapter(ledger *dex.Ledger, journal Journal, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		ledger:       ledger,
		journal:      journal,
		log:          log,
		seenDeposits: make(map[string]struct{}),
		withdrawals:  make(map[uint64]*WithdrawalRequest),
		nextID:       1,
		now:          time.Now,
	}
}

// ProcessDeposit credits a verified external deposit to caller. A transaction
// hash that was already credited is a no-op, not an error, so event relays
// can redeliver safely.
func (a *Adapter) ProcessDeposit(caller dex.AccountID, tok token.TokenID, amt amount.Amount, txHash string) error {
	if txHash == "" {
		return ErrInvalidTxHash
	}
	if amt.IsZero() {
		return dex.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.seenDeposits[txHash]; seen {
		a.log.Debug("duplicate deposit ignored", "tx_hash", txHash, "user", string(caller))
		return nil
	}
	if err := a.ledger.Credit(caller, tok, amt); err != nil {
		return err
	}
	a.seenDeposits[txHash] = struct{}{}

	a.log.Info("deposit credited",
		"user", string(caller),
		"token", tok.Key(),
		"amount", amt.String(),
		"tx_hash", txHash,
	)
	return nil
}

// RequestWithdrawal debits caller and queues a withdrawal request. The debit
// is rolled back if the journal rejects the record.
func (a *Adapter) RequestWithdrawal(caller dex.AccountID, tok token.TokenID, amt amount.Amount, targetAddress string) error {
	if targetAddress == "" {
		return ErrInvalidTarget
	}
	if amt.IsZero() {
		return dex.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ledger.Debit(caller, tok, amt); err != nil {
		return err
	}

	req := WithdrawalRequest{
		ID:            a.nextID,
		User:          caller,
		Token:         tok,
		Amount:        amt,
		TargetAddress: targetAddress,
		CreatedAt:     a.now().UTC(),
	}

	if a.journal != nil {
		if err := a.journal.InsertWithdrawal(context.Background(), req); err != nil {
			// Refunding the exact amount just debited cannot overflow.
			_ = a.ledger.Credit(caller, tok, amt)
			return err
		}
	}

	a.withdrawals[req.ID] = &req
	a.nextID++

	a.log.Info("withdrawal queued",
		"id", req.ID,
		"user", string(caller),
		"token", tok.Key(),
		"amount", amt.String(),
		"target", targetAddress,
	)
	return nil
}

// MarkProcessed flags a withdrawal as executed by the bridge operator.
func (a *Adapter) MarkProcessed(ctx context.Context, id uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	req, ok := a.withdrawals[id]
	if !ok {
		return ErrWithdrawalNotFound
	}
	if req.Processed {
		return nil
	}
	if a.journal != nil {
		if err := a.journal.MarkWithdrawalProcessed(ctx, id); err != nil {
			return err
		}
	}
	req.Processed = true
	a.log.Info("withdrawal processed", "id", id)
	return nil
}

// Withdrawals returns queued requests ordered by id. With includeProcessed
// false only the pending ones are returned.
func (a *Adapter) Withdrawals(includeProcessed bool) []WithdrawalRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]WithdrawalRequest, 0, len(a.withdrawals))
	for _, req := range a.withdrawals {
		if !includeProcessed && req.Processed {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SeenDeposits returns the credited transaction hashes, for persistence.
func (a *Adapter) SeenDeposits() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.seenDeposits))
	for h := range a.seenDeposits {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// RestoreDeposit re-installs a credited transaction hash during state load.
// The balance itself is restored by the ledger loader.
func (a *Adapter) RestoreDeposit(txHash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seenDeposits[txHash] = struct{}{}
}

// RestoreWithdrawals reloads journaled requests and advances the id counter
// past the highest one seen.
func (a *Adapter) RestoreWithdrawals(ctx context.Context) error {
	if a.journal == nil {
		return nil
	}

	reqs, err := a.journal.ListWithdrawals(ctx, true)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range reqs {
		req := reqs[i]
		a.withdrawals[req.ID] = &req
		if req.ID >= a.nextID {
			a.nextID = req.ID + 1
		}
	}
	return nil
}
