// Package statestore persists engine state snapshots into a keyValueDb
// backend. Records are msgpack, large values are lz4-compressed, and decoded
// payloads are held in an LRU cache so repeated loads skip the codec.
package statestore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
	"github.com/LeJamon/goDEXd/internal/storage/compression"
	"github.com/LeJamon/goDEXd/internal/storage/keyValueDb"
)

const defaultCacheSize = 4096

// Store reads and writes engine state snapshots.
type Store struct {
	db    keyValueDb.DB
	comp  compression.Compressor
	cache *lru.Cache[string, []byte]
}

// NewStore creates a store over db using the named compressor ("lz4" or
// "none").
func NewStore(db keyValueDb.DB, compressorName string) (*Store, error) {
	comp, err := compression.Get(compressorName)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, []byte](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, comp: comp, cache: cache}, nil
}

// Snapshot is everything the store persists for one engine.
type Snapshot struct {
	State    *dex.State
	Deposits []string // credited deposit transaction hashes
}

// SaveState writes a full snapshot in one atomic batch. Keys present in the
// backend but absent from the snapshot are deleted, so the stored state is
// always exactly the given one.
func (s *Store) SaveState(ctx context.Context, snap Snapshot) error {
	stale, err := s.existingKeys(ctx)
	if err != nil {
		return err
	}

	// Cache updates are staged and applied only after the batch commits, so a
	// failed write cannot leave the cache ahead of the backend.
	var ops []keyValueDb.BatchOperation
	written := make(map[string][]byte)
	put := func(key, payload []byte) error {
		value, err := packValue(payload, s.comp)
		if err != nil {
			return err
		}
		ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchPut, Key: key, Value: value})
		written[string(key)] = payload
		delete(stale, string(key))
		return nil
	}

	var encodeErr error
	snap.State.Ledger.ForEach(func(key dex.BalanceKey, amt amount.Amount) bool {
		payload, err := encodeRecord(balanceRecord{
			Owner:        string(key.Owner),
			TokenChain:   key.Token.Chain,
			TokenAddress: key.Token.Address,
			TokenSymbol:  key.Token.Symbol,
			Amount:       amt.Bytes(),
		})
		if err != nil {
			encodeErr = err
			return false
		}
		encodeErr = put(balanceKey(key.Owner, key.Token), payload)
		return encodeErr == nil
	})
	if encodeErr != nil {
		return encodeErr
	}

	for _, p := range snap.State.Pools.Pools() {
		payload, err := encodeRecord(poolRecord{
			ChainA:      p.TokenA.Chain,
			AddressA:    p.TokenA.Address,
			SymbolA:     p.TokenA.Symbol,
			ChainB:      p.TokenB.Chain,
			AddressB:    p.TokenB.Address,
			SymbolB:     p.TokenB.Symbol,
			ReserveA:    p.ReserveA.Bytes(),
			ReserveB:    p.ReserveB.Bytes(),
			TotalShares: p.TotalShares.Bytes(),
			FeeRateBps:  p.FeeRateBps,
		})
		if err != nil {
			return err
		}
		if err := put(poolKey(p.PairKey()), payload); err != nil {
			return err
		}
	}

	for _, txHash := range snap.Deposits {
		if err := put(depositKey(txHash), []byte{1}); err != nil {
			return err
		}
	}

	for key := range stale {
		ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchDelete, Key: []byte(key)})
	}

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	for key, payload := range written {
		s.cache.Add(key, payload)
	}
	for key := range stale {
		s.cache.Remove(key)
	}
	return nil
}

// LoadState reads the stored snapshot. An empty backend yields an empty
// snapshot, not an error.
func (s *Store) LoadState(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{State: dex.NewState()}

	err := s.scan(ctx, prefixBalance, func(key, payload []byte) error {
		var rec balanceRecord
		if err := decodeRecord(payload, &rec); err != nil {
			return err
		}
		var amt amount.Amount
		if err := amt.SetBytes(rec.Amount); err != nil {
			return err
		}
		snap.State.RestoreBalance(dex.BalanceKey{
			Owner: dex.AccountID(rec.Owner),
			Token: token.New(rec.TokenChain, rec.TokenAddress, rec.TokenSymbol),
		}, amt)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	err = s.scan(ctx, prefixPool, func(key, payload []byte) error {
		var rec poolRecord
		if err := decodeRecord(payload, &rec); err != nil {
			return err
		}
		p := &dex.Pool{
			TokenA:     token.New(rec.ChainA, rec.AddressA, rec.SymbolA),
			TokenB:     token.New(rec.ChainB, rec.AddressB, rec.SymbolB),
			FeeRateBps: rec.FeeRateBps,
		}
		if err := p.ReserveA.SetBytes(rec.ReserveA); err != nil {
			return err
		}
		if err := p.ReserveB.SetBytes(rec.ReserveB); err != nil {
			return err
		}
		if err := p.TotalShares.SetBytes(rec.TotalShares); err != nil {
			return err
		}
		snap.State.RestorePool(p)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	err = s.scan(ctx, prefixDeposit, func(key, _ []byte) error {
		snap.Deposits = append(snap.Deposits, string(key[len(prefixDeposit):]))
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// scan visits every (key, decoded payload) under prefix.
func (s *Store) scan(ctx context.Context, prefix []byte, fn func(key, payload []byte) error) error {
	iter, err := s.db.Iterator(ctx, prefix, keyValueDb.PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		key := iter.Key()
		payload, err := s.decodeCached(key, iter.Value())
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if err := fn(key, payload); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	return iter.Error()
}

// decodeCached unpacks a stored value, serving repeated keys from the cache.
func (s *Store) decodeCached(key, value []byte) ([]byte, error) {
	if payload, ok := s.cache.Get(string(key)); ok {
		return payload, nil
	}
	payload, err := unpackValue(value, s.comp)
	if err != nil {
		return nil, err
	}
	s.cache.Add(string(key), payload)
	return payload, nil
}

// existingKeys returns every stored snapshot key.
func (s *Store) existingKeys(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, prefix := range [][]byte{prefixBalance, prefixPool, prefixDeposit} {
		iter, err := s.db.Iterator(ctx, prefix, keyValueDb.PrefixEnd(prefix))
		if err != nil {
			return nil, err
		}
		for iter.Next() {
			out[string(iter.Key())] = struct{}{}
		}
		err = iter.Error()
		if closeErr := iter.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
