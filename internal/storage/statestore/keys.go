package statestore

import (
	"github.com/LeJamon/goDEXd/internal/core/dex"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// Key layout. Each record class lives under its own prefix so snapshots can
// scan and rewrite one class without touching the others.
//
//	b/<owner>/<token-key>  balance record
//	p/<pair-key>           pool record
//	d/<tx-hash>            credited deposit marker
var (
	prefixBalance = []byte("b/")
	prefixPool    = []byte("p/")
	prefixDeposit = []byte("d/")
)

func balanceKey(owner dex.AccountID, tok token.TokenID) []byte {
	k := make([]byte, 0, len(prefixBalance)+len(owner)+1+len(tok.Key()))
	k = append(k, prefixBalance...)
	k = append(k, owner...)
	k = append(k, '/')
	k = append(k, tok.Key()...)
	return k
}

func poolKey(pair dex.PairKey) []byte {
	pk := pair.Key()
	k := make([]byte, 0, len(prefixPool)+len(pk))
	k = append(k, prefixPool...)
	k = append(k, pk...)
	return k
}

func depositKey(txHash string) []byte {
	k := make([]byte, 0, len(prefixDeposit)+len(txHash))
	k = append(k, prefixDeposit...)
	k = append(k, txHash...)
	return k
}
