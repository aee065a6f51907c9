package dex

import (
	"sort"

	"github.com/LeJamon/goDEXd/internal/core/amount"
	"github.com/LeJamon/goDEXd/internal/core/token"
)

// PoolRegistry owns every pool, keyed by canonical token pair.
//
// Each mutating operation is split into a plan step that validates and
// computes the full outcome without touching state, and a commit step that
// cannot fail. The dispatcher runs its ledger preconditions between the two,
// so an operation either fully applies or leaves reserves, shares and
// balances untouched.
type PoolRegistry struct {
	pools map[PairKey]*Pool
}

// NewPoolRegistry returns an empty registry.
func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{pools: make(map[PairKey]*Pool)}
}

// Get looks up the pool for two tokens supplied in either order.
func (r *PoolRegistry) Get(x, y token.TokenID) (*Pool, bool) {
	p, ok := r.pools[Canonicalize(x, y)]
	return p, ok
}

// Pools returns every pool, sorted by canonical key for deterministic
// enumeration.
func (r *PoolRegistry) Pools() []*Pool {
	out := make([]*Pool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].PairKey(), out[j].PairKey()
		if ki.A != kj.A {
			return ki.A.Less(kj.A)
		}
		return ki.B.Less(kj.B)
	})
	return out
}

// QuoteSwap prices a swap without mutating state. It shares the exact code
// path Swap commits, fee included.
func (r *PoolRegistry) QuoteSwap(from, to token.TokenID, amountIn amount.Amount) (SwapQuote, error) {
	p, ok := r.Get(from, to)
	if !ok {
		return SwapQuote{}, ErrPoolNotFound
	}
	return quoteSwap(p, from, amountIn)
}

// restore installs a pool directly. Used only when loading persisted state.
func (r *PoolRegistry) restore(p *Pool) {
	r.pools[p.PairKey()] = p
}

// createPlan is a validated pool creation, ready to commit.
type createPlan struct {
	pool *Pool
}

// planCreate validates a CreatePool request and builds the pool it would
// insert. amountA/amountB follow the caller's token order; the pool stores
// them against the canonical order. TotalShares seeds from the caller's
// first-token deposit, mirroring the contract this engine settles for.
func (r *PoolRegistry) planCreate(tokenA, tokenB token.TokenID, amountA, amountB amount.Amount, feeRateBps uint16) (*createPlan, error) {
	if tokenA == tokenB {
		return nil, ErrInvalidAmount
	}
	if amountA.IsZero() || amountB.IsZero() {
		return nil, ErrInvalidAmount
	}
	if feeRateBps > MaxFeeRateBps {
		return nil, ErrFeeRateTooHigh
	}
	key := Canonicalize(tokenA, tokenB)
	if _, exists := r.pools[key]; exists {
		return nil, ErrPoolAlreadyExists
	}

	reserveA, reserveB := amountA, amountB
	if key.A != tokenA {
		reserveA, reserveB = amountB, amountA
	}
	return &createPlan{pool: &Pool{
		TokenA:      key.A,
		TokenB:      key.B,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		TotalShares: amountA,
		FeeRateBps:  feeRateBps,
	}}, nil
}

func (r *PoolRegistry) commitCreate(plan *createPlan) {
	r.pools[plan.pool.PairKey()] = plan.pool
}

// addPlan is a validated liquidity deposit, ready to commit.
type addPlan struct {
	pool         *Pool
	sharesMinted amount.Amount
	newReserveA  amount.Amount
	newReserveB  amount.Amount
	newShares    amount.Amount
}

// planAdd validates an AddLiquidity request. Shares are minted from the
// caller's first-token side only; amountB is deposited as given with no
// ratio matching, so callers pre-compute a ratio-correct amountB off-engine.
func (r *PoolRegistry) planAdd(tokenA, tokenB token.TokenID, amountA, amountB amount.Amount) (*addPlan, error) {
	if amountA.IsZero() || amountB.IsZero() {
		return nil, ErrInvalidAmount
	}
	p, ok := r.Get(tokenA, tokenB)
	if !ok {
		return nil, ErrPoolNotFound
	}

	var shares amount.Amount
	if p.TotalShares.IsZero() {
		// Drained-to-zero pool reseeds like creation.
		shares = amountA
	} else {
		reserveA := p.reserveOf(tokenA)
		if reserveA.IsZero() {
			return nil, ErrZeroReserve
		}
		var err error
		shares, err = amount.MulDiv(p.TotalShares, amountA, reserveA)
		if err != nil {
			return nil, ErrArithmeticOverflow
		}
	}

	depositA, depositB := amountA, amountB
	if p.TokenA != tokenA {
		depositA, depositB = amountB, amountA
	}
	newReserveA, err := p.ReserveA.Add(depositA)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	newReserveB, err := p.ReserveB.Add(depositB)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	newShares, err := p.TotalShares.Add(shares)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}

	return &addPlan{
		pool:         p,
		sharesMinted: shares,
		newReserveA:  newReserveA,
		newReserveB:  newReserveB,
		newShares:    newShares,
	}, nil
}

func (r *PoolRegistry) commitAdd(plan *addPlan) {
	plan.pool.ReserveA = plan.newReserveA
	plan.pool.ReserveB = plan.newReserveB
	plan.pool.TotalShares = plan.newShares
}

// removePlan is a validated share redemption, ready to commit.
type removePlan struct {
	pool        *Pool
	payoutA     amount.Amount // canonical A side
	payoutB     amount.Amount // canonical B side
	newReserveA amount.Amount
	newReserveB amount.Amount
	newShares   amount.Amount
}

// planRemove validates a RemoveLiquidity request and computes the
// proportional payouts.
func (r *PoolRegistry) planRemove(tokenA, tokenB token.TokenID, shareAmount amount.Amount) (*removePlan, error) {
	p, ok := r.Get(tokenA, tokenB)
	if !ok {
		return nil, ErrPoolNotFound
	}
	if shareAmount.IsZero() || shareAmount.Gt(p.TotalShares) {
		return nil, ErrInvalidShareAmount
	}

	payoutA, err := amount.MulDiv(p.ReserveA, shareAmount, p.TotalShares)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	payoutB, err := amount.MulDiv(p.ReserveB, shareAmount, p.TotalShares)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}

	// Unreachable given the proportional formula, but enforced before any
	// state is written.
	newReserveA, err := p.ReserveA.Sub(payoutA)
	if err != nil {
		return nil, ErrInsufficientPoolReserves
	}
	newReserveB, err := p.ReserveB.Sub(payoutB)
	if err != nil {
		return nil, ErrInsufficientPoolReserves
	}
	newShares, err := p.TotalShares.Sub(shareAmount)
	if err != nil {
		return nil, ErrInvalidShareAmount
	}

	return &removePlan{
		pool:        p,
		payoutA:     payoutA,
		payoutB:     payoutB,
		newReserveA: newReserveA,
		newReserveB: newReserveB,
		newShares:   newShares,
	}, nil
}

func (r *PoolRegistry) commitRemove(plan *removePlan) {
	plan.pool.ReserveA = plan.newReserveA
	plan.pool.ReserveB = plan.newReserveB
	plan.pool.TotalShares = plan.newShares
}

// swapPlan is a validated swap, ready to commit.
type swapPlan struct {
	pool             *Pool
	from             token.TokenID
	quote            SwapQuote
	newInputReserve  amount.Amount
	newOutputReserve amount.Amount
}

// planSwap validates a swap and computes the post-trade reserves. The input
// reserve grows by the full amountIn (trade plus retained fee); the output
// reserve shrinks by the quoted amount.
func (r *PoolRegistry) planSwap(from, to token.TokenID, amountIn amount.Amount) (*swapPlan, error) {
	p, ok := r.Get(from, to)
	if !ok {
		return nil, ErrPoolNotFound
	}
	if !p.has(from) || !p.has(to) || from == to {
		return nil, ErrPoolNotFound
	}

	quote, err := quoteSwap(p, from, amountIn)
	if err != nil {
		return nil, err
	}

	inputReserve, outputReserve := p.reserves(from)
	newIn, err := inputReserve.Add(amountIn)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	newOut, err := outputReserve.Sub(quote.AmountOut)
	if err != nil {
		return nil, ErrInsufficientOutputReserve
	}

	return &swapPlan{
		pool:             p,
		from:             from,
		quote:            quote,
		newInputReserve:  newIn,
		newOutputReserve: newOut,
	}, nil
}

func (r *PoolRegistry) commitSwap(plan *swapPlan) {
	if plan.from == plan.pool.TokenA {
		plan.pool.ReserveA = plan.newInputReserve
		plan.pool.ReserveB = plan.newOutputReserve
	} else {
		plan.pool.ReserveB = plan.newInputReserve
		plan.pool.ReserveA = plan.newOutputReserve
	}
}
