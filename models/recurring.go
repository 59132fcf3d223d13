package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecurringExpense is a template that periodically spawns concrete expenses.
// It carries the same payload as an expense minus the date, plus the schedule.
type RecurringExpense struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TripID         uuid.UUID  `gorm:"type:uuid;index" json:"trip_id"`
	PaidBy         uuid.UUID  `gorm:"type:uuid" json:"paid_by"`
	Description    string     `gorm:"not null;size:255" json:"description"`
	Amount         float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string     `gorm:"default:USD;size:3" json:"currency"`
	Category       string     `gorm:"size:50" json:"category"`
	SplitType      string     `gorm:"not null;size:20" json:"split_type"`
	Participants   UUIDSlice  `gorm:"type:jsonb" json:"participants"`
	SplitData      SplitData  `gorm:"type:jsonb" json:"split_data,omitempty"`
	Frequency      string     `gorm:"not null;size:10" json:"frequency"` // daily, weekly, monthly, yearly
	Interval       int        `gorm:"default:1" json:"interval"`
	StartDate      time.Time  `gorm:"type:date" json:"start_date"`
	EndDate        *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	NextOccurrence time.Time  `gorm:"index" json:"next_occurrence"`
	LastGenerated  *time.Time `json:"last_generated,omitempty"`
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (r *RecurringExpense) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type CreateRecurringRequest struct {
	Description  string             `json:"description" binding:"required"`
	Amount       float64            `json:"amount" binding:"required,gt=0"`
	Currency     string             `json:"currency"`
	Category     string             `json:"category"`
	SplitType    string             `json:"split_type" binding:"required,oneof=equal custom percentage shares"`
	Participants []string           `json:"participants"`
	SplitData    map[string]float64 `json:"split_data"`
	Frequency    string             `json:"frequency" binding:"required,oneof=daily weekly monthly yearly"`
	Interval     int                `json:"interval" binding:"omitempty,gte=1"`
	StartDate    string             `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate      string             `json:"end_date"`                      // YYYY-MM-DD
}

type UpdateRecurringRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	EndDate     string  `json:"end_date"`
	IsActive    *bool   `json:"is_active"` // only true→false is honored
}
