// Package token defines the identifier for a fungible asset.
package token

import "fmt"

// TokenID identifies one fungible asset by origin chain, contract address and
// symbol. It is a comparable value type: two TokenIDs name the same asset iff
// all three fields are equal (no cross-chain aliasing), and it is used
// directly as a map key.
type TokenID struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// New returns a TokenID for the given chain, contract address and symbol.
func New(chain, address, symbol string) TokenID {
	return TokenID{Chain: chain, Address: address, Symbol: symbol}
}

// Less defines the total order over TokenIDs, lexicographic over
// (Chain, Address, Symbol). Pool keys are canonicalized with it so that a
// pair resolves to the same pool regardless of argument order.
func (t TokenID) Less(o TokenID) bool {
	if t.Chain != o.Chain {
		return t.Chain < o.Chain
	}
	if t.Address != o.Address {
		return t.Address < o.Address
	}
	return t.Symbol < o.Symbol
}

// IsZero reports whether the TokenID is the empty identifier.
func (t TokenID) IsZero() bool {
	return t == TokenID{}
}

// Key renders a stable string form usable as a storage key component.
func (t TokenID) Key() string {
	return t.Chain + ":" + t.Address + ":" + t.Symbol
}

func (t TokenID) String() string {
	return fmt.Sprintf("%s@%s(%s)", t.Symbol, t.Chain, t.Address)
}
