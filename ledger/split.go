package ledger

import (
	"encoding/json"
	"errors"
	"math"

	"tripsplit-backend/models"

	"github.com/google/uuid"
)

type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitCustom     SplitType = "custom"
	SplitPercentage SplitType = "percentage"
	SplitShares     SplitType = "shares"
)

// Balances closer to zero than this are considered settled.
const epsilon = 0.01

func roundToTwo(val float64) float64 {
	return math.Round(val*100) / 100
}

// decodeSplitData parses the opaque split_data payload into id → value.
// Anything that is not a JSON object of uuid keys and numeric values counts
// as undecodable.
func decodeSplitData(data []byte) (map[uuid.UUID]float64, error) {
	if len(data) == 0 {
		return nil, errors.New("empty split data")
	}
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(raw))
	for key, val := range raw {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, err
		}
		out[id] = val
	}
	return out, nil
}

// ComputeShares returns how much each participant owes for the expense.
// The result always sums to the expense amount within 0.01, regardless of
// rounding or malformed split_data; decode problems degrade per split type
// instead of erroring:
//
//	custom      → falls back to an equal split
//	percentage  → empty map
//	shares      → empty map
//	unknown     → treated as equal
//
// Zero participants yields an empty map. Calls are idempotent: the shares
// are derived from the expense fields every time, never cached.
func ComputeShares(e models.Expense) map[uuid.UUID]float64 {
	participants := []uuid.UUID(e.Participants)
	shares := make(map[uuid.UUID]float64)
	if len(participants) == 0 {
		return shares
	}

	switch SplitType(e.SplitType) {
	case SplitCustom:
		data, err := decodeSplitData(e.SplitData)
		if err != nil {
			shares = equalShares(e.Amount, participants)
			break
		}
		for id, amount := range data {
			shares[id] = roundToTwo(amount)
		}

	case SplitPercentage:
		data, err := decodeSplitData(e.SplitData)
		if err != nil {
			return shares
		}
		for id, percent := range data {
			shares[id] = roundToTwo(e.Amount * percent / 100)
		}

	case SplitShares:
		data, err := decodeSplitData(e.SplitData)
		if err != nil {
			return shares
		}
		var totalWeight float64
		for _, weight := range data {
			totalWeight += weight
		}
		if totalWeight <= 0 {
			return shares
		}
		for id, weight := range data {
			shares[id] = roundToTwo(e.Amount * weight / totalWeight)
		}

	default:
		// Equal, and the deliberate catch-all for unrecognized types.
		shares = equalShares(e.Amount, participants)
	}

	reconcile(shares, e.Amount, participants[0])
	return shares
}

// equalShares divides amount evenly, assigning the rounding remainder to the
// first participant so the entries sum to the amount exactly.
func equalShares(amount float64, participants []uuid.UUID) map[uuid.UUID]float64 {
	shares := make(map[uuid.UUID]float64, len(participants))
	perPerson := roundToTwo(amount / float64(len(participants)))
	for i, id := range participants {
		if i == 0 {
			shares[id] = roundToTwo(amount - perPerson*float64(len(participants)-1))
		} else {
			shares[id] = perPerson
		}
	}
	return shares
}

// reconcile pushes any drift between the share sum and the expense amount
// onto the first participant, creating the entry if needed. This is what
// keeps the sum invariant when custom amounts don't add up or percentages
// round badly.
func reconcile(shares map[uuid.UUID]float64, amount float64, first uuid.UUID) {
	var sum float64
	for _, share := range shares {
		sum += share
	}
	diff := roundToTwo(amount - sum)
	if math.Abs(diff) > epsilon {
		shares[first] = roundToTwo(shares[first] + diff)
	}
}
