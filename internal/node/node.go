// Package node assembles a running dexd: configuration, storage, the
// settlement engine, the bridge adapter and the JSON-RPC server.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goDEXd/internal/bridge"
	"github.com/LeJamon/goDEXd/internal/config"
	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
	"github.com/LeJamon/goDEXd/internal/server/api/jsonrpc"
	"github.com/LeJamon/goDEXd/internal/storage/journal"
	"github.com/LeJamon/goDEXd/internal/storage/keyValueDb"
	"github.com/LeJamon/goDEXd/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goDEXd/internal/storage/keyValueDb/pebble"
	"github.com/LeJamon/goDEXd/internal/storage/statestore"
)

// Node owns every long-lived component of one dexd process. All engine
// access goes through its mutex; the engine itself is single-threaded by
// contract.
type Node struct {
	cfg *config.Config
	log *slog.Logger

	mu      sync.Mutex
	engine  *dex.Engine
	adapter *bridge.Adapter
	store   *statestore.Store

	kvManager keyValueDb.Manager
	kvMemory  *keyValueDb.Memory
	journal   *journal.DB
}

// New builds a node from configuration: opens storage, loads the persisted
// snapshot and restores the bridge state.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Node, error) {
	if log == nil {
		log = slog.Default()
	}
	n := &Node{cfg: cfg, log: log}

	db, err := n.openDatabase()
	if err != nil {
		return nil, err
	}

	store, err := statestore.NewStore(db, cfg.Database.Compression)
	if err != nil {
		n.closeStorage()
		return nil, fmt.Errorf("state store: %w", err)
	}
	n.store = store

	snap, err := store.LoadState(ctx)
	if err != nil {
		n.closeStorage()
		return nil, fmt.Errorf("load state: %w", err)
	}

	var j *journal.DB
	if cfg.Journal.Driver != "" {
		j, err = journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			n.closeStorage()
			return nil, err
		}
		n.journal = j
	}

	adapter := bridge.NewAdapter(snap.State.Ledger, journalOrNil(j), log)
	for _, txHash := range snap.Deposits {
		adapter.RestoreDeposit(txHash)
	}
	if err := adapter.RestoreWithdrawals(ctx); err != nil {
		n.Close()
		return nil, fmt.Errorf("restore withdrawals: %w", err)
	}

	n.adapter = adapter
	n.engine = dex.NewEngine(snap.State, adapter)

	log.Info("node initialized",
		"backend", cfg.Database.Backend,
		"pools", len(snap.State.Pools.Pools()),
		"deposits", len(snap.Deposits),
	)
	return n, nil
}

// journalOrNil avoids storing a typed nil in the bridge.Journal interface.
func journalOrNil(j *journal.DB) bridge.Journal {
	if j == nil {
		return nil
	}
	return j
}

func (n *Node) openDatabase() (keyValueDb.DB, error) {
	switch n.cfg.Database.Backend {
	case "memory":
		n.kvMemory = keyValueDb.NewMemory()
		return n.kvMemory, nil
	case "pebble":
		n.kvManager = pebble.NewManager(n.cfg.Database.Path)
	case "leveldb":
		n.kvManager = leveldb.NewManager(n.cfg.Database.Path)
	default:
		return nil, fmt.Errorf("%w: %s", keyValueDb.ErrUnknownBackend, n.cfg.Database.Backend)
	}

	db, err := n.kvManager.OpenDB("state")
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (n *Node) closeStorage() {
	if n.kvManager != nil {
		if err := n.kvManager.Close(); err != nil {
			n.log.Warn("closing key-value store", "err", err)
		}
	}
	if n.kvMemory != nil {
		n.kvMemory.Close()
	}
}

// Close releases storage and journal handles.
func (n *Node) Close() {
	if n.journal != nil {
		if err := n.journal.Close(); err != nil {
			n.log.Warn("closing journal", "err", err)
		}
	}
	n.closeStorage()
}

// Run serves JSON-RPC until ctx is cancelled, then shuts down within the
// configured grace period.
func (n *Node) Run(ctx context.Context) error {
	handler := jsonrpc.NewDexHandler(n)
	srv := &http.Server{
		Addr:    net.JoinHostPort(n.cfg.Server.IP, strconv.Itoa(n.cfg.Server.Port)),
		Handler: jsonrpc.NewServer(handler, n.log),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n.log.Info("rpc server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		grace := time.Duration(n.cfg.Server.ShutdownGraceSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		n.log.Info("shutting down", "grace", grace)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Backend implementation. Every method serializes on the node mutex and
// hands copies outward so RPC encoding never races a later operation.

func (n *Node) Pools() []*dex.Pool {
	n.mu.Lock()
	defer n.mu.Unlock()

	pools := n.engine.State().Pools.Pools()
	out := make([]*dex.Pool, len(pools))
	for i, p := range pools {
		cp := *p
		out[i] = &cp
	}
	return out
}

func (n *Node) Pool(x, y token.TokenID) (*dex.Pool, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, ok := n.engine.State().Pools.Get(x, y)
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (n *Node) Balance(owner dex.AccountID, tok token.TokenID) amount.Amount {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.State().Ledger.Balance(owner, tok)
}

func (n *Node) Balances(owner dex.AccountID) []dex.BalanceEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.State().Ledger.Entries(owner)
}

func (n *Node) EstimateSwap(from, to token.TokenID, amountIn amount.Amount) (dex.SwapQuote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.State().Pools.QuoteSwap(from, to, amountIn)
}

func (n *Node) Withdrawals(includeProcessed bool) []bridge.WithdrawalRequest {
	// The adapter has its own lock.
	return n.adapter.Withdrawals(includeProcessed)
}

// Submit applies one operation and persists the resulting snapshot. A failed
// persist is logged, not surfaced: the in-memory state is authoritative and
// the next successful operation rewrites the full snapshot.
func (n *Node) Submit(caller dex.AccountID, op dex.Operation) (dex.Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	resp, err := n.engine.Apply(caller, op)
	if err != nil {
		return nil, err
	}

	snap := statestore.Snapshot{
		State:    n.engine.State(),
		Deposits: n.adapter.SeenDeposits(),
	}
	if err := n.store.SaveState(context.Background(), snap); err != nil {
		n.log.Error("persisting snapshot", "err", err)
	}

	return resp, nil
}
