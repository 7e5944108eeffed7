package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a billable party referenced by invoices.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `json:"email"`
	Address   string       `gorm:"type:text" json:"address"`
	City      string       `json:"city"`
	State     string       `json:"state"`
	GSTIN     string       `gorm:"column:gstin" json:"gstin"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
