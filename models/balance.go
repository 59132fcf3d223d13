package models

import "github.com/google/uuid"

// SuggestedPayment is one leg of the simplified debt graph.
type SuggestedPayment struct {
	From     uuid.UUID `json:"from"`
	FromName string    `json:"from_name"`
	To       uuid.UUID `json:"to"`
	ToName   string    `json:"to_name"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
}

// MemberBalance is one member's net position within a trip.
type MemberBalance struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Balance float64   `json:"balance"` // positive = owed money, negative = owes money
}

// FriendBalance is the overall position against a single counterparty
// across all shared trips.
type FriendBalance struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Amount    float64   `json:"amount"` // positive = they owe you, negative = you owe them
	Currency  string    `json:"currency"`
}

// TripBalanceSummary is returned for GET /api/trips/:id/balances
type TripBalanceSummary struct {
	TripID               uuid.UUID          `json:"trip_id"`
	TripName             string             `json:"trip_name"`
	Currency             string             `json:"currency"`
	UserPaid             float64            `json:"user_paid"`
	UserShare            float64            `json:"user_share"`
	UserBalance          float64            `json:"user_balance"`
	MemberBalances       []MemberBalance    `json:"member_balances"`
	SuggestedPayments    []SuggestedPayment `json:"suggested_payments"`
	TotalSpent           float64            `json:"total_spent"`
	BudgetUsedPercentage float64            `json:"budget_used_percentage"`
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	ToReceive    float64         `json:"to_receive"` // total others owe you
	ToGive       float64         `json:"to_give"`    // total you owe others
	TotalBalance float64         `json:"total_balance"`
	Friends      []FriendBalance `json:"friends"`
}
