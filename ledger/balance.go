package ledger

import (
	"math"

	"tripsplit-backend/models"

	"github.com/google/uuid"
)

// TripSummary is the trip-scoped aggregation result: everyone's net position
// plus paid/share/balance figures for one designated user.
type TripSummary struct {
	UserPaid       float64
	UserShare      float64
	UserBalance    float64
	MemberBalances map[uuid.UUID]float64
}

// UserSummary is the cross-trip aggregation result for a single user.
type UserSummary struct {
	ToReceive      float64
	ToGive         float64
	TotalBalance   float64
	FriendBalances map[uuid.UUID]float64
}

// TripRecords bundles the already-fetched records of one trip for cross-trip
// aggregation.
type TripRecords struct {
	Expenses    []models.Expense
	Settlements []models.Settlement
}

// NetBalances computes each user's signed net position over the given
// expenses and settlements: what they paid as payer minus what they owe as
// participant, adjusted by recorded payments. Only completed settlements
// count; pending and cancelled ones are ignored.
func NetBalances(expenses []models.Expense, settlements []models.Settlement) map[uuid.UUID]float64 {
	balances := make(map[uuid.UUID]float64)

	for _, e := range expenses {
		balances[e.PaidBy] += e.Amount
		for id, share := range ComputeShares(e) {
			balances[id] -= share
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		// A recorded payment reduces the payer's net debt and the
		// receiver's net credit.
		balances[s.FromUser] += s.Amount
		balances[s.ToUser] -= s.Amount
	}

	return balances
}

// TripBalances aggregates one trip's records. The caller is responsible for
// validating that the trip and user exist; unknown references are not
// absorbed here.
func TripBalances(userID uuid.UUID, expenses []models.Expense, settlements []models.Settlement) TripSummary {
	summary := TripSummary{
		MemberBalances: NetBalances(expenses, settlements),
	}

	for _, e := range expenses {
		if e.PaidBy == userID {
			summary.UserPaid += e.Amount
		}
		if share, ok := ComputeShares(e)[userID]; ok {
			summary.UserShare += share
		}
	}

	summary.UserPaid = roundToTwo(summary.UserPaid)
	summary.UserShare = roundToTwo(summary.UserShare)
	summary.UserBalance = roundToTwo(summary.MemberBalances[userID])
	return summary
}

// UserBalances aggregates a user's position across all their trips, keyed by
// counterparty. Per-trip balances are simplified first so the counterparty
// amounts line up with the suggested payments the user sees inside each trip.
func UserBalances(userID uuid.UUID, trips []TripRecords) UserSummary {
	accumulated := make(map[uuid.UUID]float64)

	for _, trip := range trips {
		net := NetBalances(trip.Expenses, trip.Settlements)
		for _, txn := range SimplifyDebts(net, nil) {
			switch userID {
			case txn.From:
				accumulated[txn.To] -= txn.Amount
			case txn.To:
				accumulated[txn.From] += txn.Amount
			}
		}
	}

	summary := UserSummary{
		FriendBalances: make(map[uuid.UUID]float64),
	}
	for id, amount := range accumulated {
		amount = roundToTwo(amount)
		if math.Abs(amount) <= epsilon {
			continue
		}
		summary.FriendBalances[id] = amount
		if amount > 0 {
			summary.ToReceive += amount
		} else {
			summary.ToGive += -amount
		}
	}

	summary.ToReceive = roundToTwo(summary.ToReceive)
	summary.ToGive = roundToTwo(summary.ToGive)
	summary.TotalBalance = roundToTwo(summary.ToReceive - summary.ToGive)
	return summary
}
