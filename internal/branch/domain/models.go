// Package domain contains persistence models for branches.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Branch is one issuing location. It owns the per-fiscal-year invoice number
// counter: LastInvoiceNumber never decreases within a fiscal year and resets
// to zero exactly once when a number is requested after the year rolls over.
type Branch struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"not null" json:"name"`
	Address           string       `gorm:"type:text;not null" json:"address"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	GSTIN             string       `gorm:"column:gstin" json:"gstin"`
	PhoneCode         string       `gorm:"default:'+91'" json:"phone_code"`
	Phone             string       `json:"phone"`
	Website           string       `json:"website"`
	SeriesPrefix      string       `gorm:"not null;default:''" json:"series_prefix"`
	LastInvoiceNumber int64        `gorm:"not null;default:0" json:"last_invoice_number"`
	LastResetDate     *time.Time   `json:"last_reset_date,omitempty"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Branch) TableName() string { return "branches" }
