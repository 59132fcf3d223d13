package ledger

import (
	"encoding/json"
	"testing"

	"tripsplit-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitData(t *testing.T, entries map[uuid.UUID]float64) models.SplitData {
	t.Helper()
	raw := make(map[string]float64, len(entries))
	for id, val := range entries {
		raw[id.String()] = val
	}
	b, err := json.Marshal(raw)
	require.NoError(t, err)
	return models.SplitData(b)
}

func shareSum(shares map[uuid.UUID]float64) float64 {
	var sum float64
	for _, s := range shares {
		sum += s
	}
	return sum
}

func TestComputeSharesEqual(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	shares := ComputeShares(models.Expense{
		Amount:       100.00,
		SplitType:    "equal",
		Participants: models.UUIDSlice{p1, p2, p3},
	})

	require.Len(t, shares, 3)
	// 100/3 doesn't divide evenly; the remainder lands on the first
	// participant by list order.
	assert.InDelta(t, 33.34, shares[p1], 0.001)
	assert.InDelta(t, 33.33, shares[p2], 0.001)
	assert.InDelta(t, 33.33, shares[p3], 0.001)
	assert.InDelta(t, 100.00, shareSum(shares), 0.001)
}

func TestComputeSharesCustom(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	t.Run("valid amounts are used directly", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "custom",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 60, p2: 40}),
		})
		assert.InDelta(t, 60, shares[p1], 0.001)
		assert.InDelta(t, 40, shares[p2], 0.001)
	})

	t.Run("short amounts are reconciled onto the first participant", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "custom",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 50, p2: 30}),
		})
		assert.InDelta(t, 70, shares[p1], 0.001)
		assert.InDelta(t, 30, shares[p2], 0.001)
		assert.InDelta(t, 100, shareSum(shares), 0.01)
	})

	t.Run("malformed data falls back to equal", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "custom",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    models.SplitData(`"not a map"`),
		})
		assert.InDelta(t, 50, shares[p1], 0.001)
		assert.InDelta(t, 50, shares[p2], 0.001)
	})
}

func TestComputeSharesPercentage(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("percentages of the amount", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       90,
			SplitType:    "percentage",
			Participants: models.UUIDSlice{p1, p2, p3},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 50, p2: 30, p3: 20}),
		})
		assert.InDelta(t, 45, shares[p1], 0.001)
		assert.InDelta(t, 27, shares[p2], 0.001)
		assert.InDelta(t, 18, shares[p3], 0.001)
	})

	t.Run("malformed data yields an empty map, not an equal fallback", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       90,
			SplitType:    "percentage",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    models.SplitData(`{"p1": "fifty"}`),
		})
		assert.Empty(t, shares)
	})

	t.Run("percentages short of 100 are reconciled", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "percentage",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 50, p2: 30}),
		})
		assert.InDelta(t, 100, shareSum(shares), 0.01)
		assert.InDelta(t, 70, shares[p1], 0.001)
	})
}

func TestComputeSharesWeighted(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("weights divide proportionally", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "shares",
			Participants: models.UUIDSlice{p1, p2, p3},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 2, p2: 1, p3: 1}),
		})
		assert.InDelta(t, 50, shares[p1], 0.001)
		assert.InDelta(t, 25, shares[p2], 0.001)
		assert.InDelta(t, 25, shares[p3], 0.001)
	})

	t.Run("zero total weight yields an empty map", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "shares",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    splitData(t, map[uuid.UUID]float64{p1: 0, p2: 0}),
		})
		assert.Empty(t, shares)
	})

	t.Run("malformed data yields an empty map", func(t *testing.T) {
		shares := ComputeShares(models.Expense{
			Amount:       100,
			SplitType:    "shares",
			Participants: models.UUIDSlice{p1, p2},
			SplitData:    models.SplitData(`[1, 2, 3]`),
		})
		assert.Empty(t, shares)
	})
}

func TestComputeSharesUnknownTypeDefaultsToEqual(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	shares := ComputeShares(models.Expense{
		Amount:       50,
		SplitType:    "by-moon-phase",
		Participants: models.UUIDSlice{p1, p2},
	})

	assert.InDelta(t, 25, shares[p1], 0.001)
	assert.InDelta(t, 25, shares[p2], 0.001)
}

func TestComputeSharesNoParticipants(t *testing.T) {
	shares := ComputeShares(models.Expense{
		Amount:    100,
		SplitType: "equal",
	})
	assert.Empty(t, shares)
}

func TestComputeSharesSumInvariant(t *testing.T) {
	participants := models.UUIDSlice{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	weights := map[uuid.UUID]float64{}
	percents := map[uuid.UUID]float64{}
	amounts := map[uuid.UUID]float64{}
	for i, id := range participants {
		weights[id] = float64(i + 1)
		percents[id] = 20
		amounts[id] = 24.69
	}

	cases := []struct {
		name    string
		expense models.Expense
	}{
		{"equal", models.Expense{Amount: 123.45, SplitType: "equal", Participants: participants}},
		{"custom", models.Expense{Amount: 123.45, SplitType: "custom", Participants: participants, SplitData: splitData(t, amounts)}},
		{"percentage", models.Expense{Amount: 123.45, SplitType: "percentage", Participants: participants, SplitData: splitData(t, percents)}},
		{"shares", models.Expense{Amount: 123.45, SplitType: "shares", Participants: participants, SplitData: splitData(t, weights)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares := ComputeShares(tc.expense)
			assert.InDelta(t, tc.expense.Amount, shareSum(shares), 0.01)
		})
	}
}

func TestComputeSharesIdempotent(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	expense := models.Expense{
		Amount:       77.77,
		SplitType:    "shares",
		Participants: models.UUIDSlice{p1, p2, p3},
		SplitData:    splitData(t, map[uuid.UUID]float64{p1: 3, p2: 2, p3: 2}),
	}

	first := ComputeShares(expense)
	second := ComputeShares(expense)
	assert.Equal(t, first, second)
}
