package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

var ErrSettlementFinal = errors.New("settlement is already in a terminal state")

type Settlement struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TripID    uuid.UUID        `gorm:"type:uuid;index" json:"trip_id"`
	FromUser  uuid.UUID        `gorm:"type:uuid" json:"from_user"`
	Payer     User             `gorm:"foreignKey:FromUser" json:"payer,omitempty"`
	ToUser    uuid.UUID        `gorm:"type:uuid" json:"to_user"`
	Payee     User             `gorm:"foreignKey:ToUser" json:"payee,omitempty"`
	Amount    float64          `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string           `gorm:"default:USD;size:3" json:"currency"`
	Status    SettlementStatus `gorm:"default:pending;size:20" json:"status"`
	SettledAt *time.Time       `json:"settled_at,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s *Settlement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Complete moves a pending settlement to completed and stamps settled_at.
// Completing an already-completed settlement is a no-op, so a retried
// request cannot adjust balances twice. Cancelled is terminal.
func (s *Settlement) Complete(now time.Time) error {
	switch s.Status {
	case SettlementCompleted:
		return nil
	case SettlementCancelled:
		return ErrSettlementFinal
	}
	s.Status = SettlementCompleted
	s.SettledAt = &now
	return nil
}

// Cancel moves a pending settlement to cancelled. Cancelling twice is a
// no-op; a completed settlement cannot be cancelled.
func (s *Settlement) Cancel() error {
	switch s.Status {
	case SettlementCancelled:
		return nil
	case SettlementCompleted:
		return ErrSettlementFinal
	}
	s.Status = SettlementCancelled
	return nil
}

type CreateSettlementRequest struct {
	ToUser string  `json:"to_user" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Notes  string  `json:"notes"`
}
