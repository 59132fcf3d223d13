package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Trip struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string       `gorm:"not null;size:100" json:"name"`
	Location  string       `gorm:"size:100" json:"location,omitempty"`
	ImageURL  string       `json:"image_url,omitempty"`
	Currency  string       `gorm:"default:USD;size:3" json:"currency"`
	Budget    float64      `gorm:"type:decimal(12,2);default:0" json:"budget"`
	StartDate *time.Time   `gorm:"type:date" json:"start_date,omitempty"`
	EndDate   *time.Time   `gorm:"type:date" json:"end_date,omitempty"`
	CreatedBy uuid.UUID    `gorm:"type:uuid" json:"created_by"`
	Creator   User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members   []TripMember `gorm:"foreignKey:TripID" json:"members,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TripMember struct {
	TripID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"trip_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role     string    `gorm:"default:member;size:20" json:"role"` // organizer, member
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Request structs
type CreateTripRequest struct {
	Name      string   `json:"name" binding:"required"`
	Location  string   `json:"location"`
	Currency  string   `json:"currency"`
	Budget    float64  `json:"budget" binding:"omitempty,gte=0"`
	StartDate string   `json:"start_date"` // YYYY-MM-DD
	EndDate   string   `json:"end_date"`   // YYYY-MM-DD
	Members   []string `json:"members"`    // list of user IDs or emails
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

// Response structs
type TripResponse struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	Location             string               `json:"location,omitempty"`
	ImageURL             string               `json:"image_url,omitempty"`
	Currency             string               `json:"currency"`
	Budget               float64              `json:"budget"`
	TotalSpent           float64              `json:"total_spent"`
	BudgetUsedPercentage float64              `json:"budget_used_percentage"`
	StartDate            *time.Time           `json:"start_date,omitempty"`
	EndDate              *time.Time           `json:"end_date,omitempty"`
	CreatedBy            uuid.UUID            `json:"created_by"`
	Members              []TripMemberResponse `json:"members"`
	CreatedAt            time.Time            `json:"created_at"`
}

type TripMemberResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
