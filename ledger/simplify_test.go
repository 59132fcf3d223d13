package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyDebtsTwoDebtorsOneCreditor(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	txns := SimplifyDebts(map[uuid.UUID]float64{a: -50, b: -30, c: 80}, nil)

	require.Len(t, txns, 2)
	// Largest debt settles first.
	assert.Equal(t, a, txns[0].From)
	assert.Equal(t, c, txns[0].To)
	assert.InDelta(t, 50, txns[0].Amount, 0.001)
	assert.Equal(t, b, txns[1].From)
	assert.Equal(t, c, txns[1].To)
	assert.InDelta(t, 30, txns[1].Amount, 0.001)
}

func TestSimplifyDebtsNetsEveryoneToZero(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	balances := map[uuid.UUID]float64{a: -33.33, b: -41.67, c: 66.66, d: 8.34}

	txns := SimplifyDebts(balances, nil)

	remaining := make(map[uuid.UUID]float64, len(balances))
	for id, bal := range balances {
		remaining[id] = bal
	}
	for _, txn := range txns {
		remaining[txn.From] += txn.Amount
		remaining[txn.To] -= txn.Amount
	}
	for id, bal := range remaining {
		assert.InDelta(t, 0, bal, 0.01, "residual balance for %s", id)
	}

	// Greedy bound: at most debtors + creditors - 1 payments.
	assert.LessOrEqual(t, len(txns), 3)
}

func TestSimplifyDebtsDropsNearZeroBalances(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	txns := SimplifyDebts(map[uuid.UUID]float64{a: 0.004, b: -0.004}, nil)
	assert.Empty(t, txns)
}

func TestSimplifyDebtsResolverCalledOncePerUser(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	calls := make(map[uuid.UUID]int)
	resolve := func(id uuid.UUID) string {
		calls[id]++
		return "user-" + id.String()[:8]
	}

	// c receives two payments, but its name is looked up once.
	txns := SimplifyDebts(map[uuid.UUID]float64{a: -50, b: -30, c: 80}, resolve)

	require.Len(t, txns, 2)
	assert.Equal(t, txns[0].ToName, txns[1].ToName)
	for id, n := range calls {
		assert.Equal(t, 1, n, "resolver called %d times for %s", n, id)
	}
}

func TestSimplifyDebtsDeterministicOnTies(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	balances := map[uuid.UUID]float64{a: -40, b: -40, c: 40, d: 40}

	first := SimplifyDebts(balances, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SimplifyDebts(balances, nil))
	}
}

func TestSimplifyDebtsEmptyAndOneSided(t *testing.T) {
	assert.Empty(t, SimplifyDebts(nil, nil))
	// A lone creditor has nobody to collect from.
	assert.Empty(t, SimplifyDebts(map[uuid.UUID]float64{uuid.New(): 25}, nil))
}
