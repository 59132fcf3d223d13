package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// Transaction is one suggested payment in the simplified debt graph.
type Transaction struct {
	From     uuid.UUID
	FromName string
	To       uuid.UUID
	ToName   string
	Amount   float64
}

// NameResolver looks up a display name for presentation. SimplifyDebts
// memoizes results for the duration of one call, so a resolver backed by a
// user directory is hit at most once per id.
type NameResolver func(uuid.UUID) string

// SimplifyDebts reduces a net balance map to a small list of payments that
// nets everyone to zero within 0.01. Greedy heuristic: largest debtor pays
// largest creditor, repeat. The transaction count is bounded by
// #debtors + #creditors − 1; this is not a proof-optimal minimum.
// A nil resolver leaves the name fields empty.
func SimplifyDebts(balances map[uuid.UUID]float64, resolve NameResolver) []Transaction {
	type userBalance struct {
		UserID uuid.UUID
		Amount float64
	}

	var debtors, creditors []userBalance
	for id, amount := range balances {
		rounded := roundToTwo(amount)
		if rounded > epsilon {
			creditors = append(creditors, userBalance{id, rounded})
		} else if rounded < -epsilon {
			debtors = append(debtors, userBalance{id, -rounded})
		}
	}

	// Largest amounts first; ties broken by id so the output is
	// deterministic for equal balances.
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].Amount != debtors[j].Amount {
			return debtors[i].Amount > debtors[j].Amount
		}
		return debtors[i].UserID.String() < debtors[j].UserID.String()
	})
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].Amount != creditors[j].Amount {
			return creditors[i].Amount > creditors[j].Amount
		}
		return creditors[i].UserID.String() < creditors[j].UserID.String()
	})

	names := make(map[uuid.UUID]string)
	lookup := func(id uuid.UUID) string {
		if resolve == nil {
			return ""
		}
		if name, ok := names[id]; ok {
			return name
		}
		name := resolve(id)
		names[id] = name
		return name
	}

	var results []Transaction
	i, j := 0, 0

	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].Amount
		if creditors[j].Amount < amount {
			amount = creditors[j].Amount
		}
		amount = roundToTwo(amount)

		results = append(results, Transaction{
			From:     debtors[i].UserID,
			FromName: lookup(debtors[i].UserID),
			To:       creditors[j].UserID,
			ToName:   lookup(creditors[j].UserID),
			Amount:   amount,
		})

		debtors[i].Amount = roundToTwo(debtors[i].Amount - amount)
		creditors[j].Amount = roundToTwo(creditors[j].Amount - amount)

		if debtors[i].Amount < epsilon {
			i++
		}
		if creditors[j].Amount < epsilon {
			j++
		}
	}

	return results
}
