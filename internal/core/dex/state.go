package dex

import (
	"github.com/LeJamon/goDEXd/internal/core/amount"
)

// State is the engine-owned aggregate: the balance ledger and the pool
// registry. One State exists per deployed engine; it is passed by reference
// into every operation and owns its maps exclusively, so the engine is fully
// testable without a host runtime.
type State struct {
	Ledger *Ledger
	Pools  *PoolRegistry
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		Ledger: NewLedger(),
		Pools:  NewPoolRegistry(),
	}
}

// RestoreBalance installs a balance entry during state loading.
func (s *State) RestoreBalance(key BalanceKey, amt amount.Amount) {
	s.Ledger.setBalance(key, amt)
}

// RestorePool installs a pool during state loading.
func (s *State) RestorePool(p *Pool) {
	s.Pools.restore(p)
}
