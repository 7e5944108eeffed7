package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tax is a named rate, e.g. "GST 18%". Invoices store the rate and look the
// name up from here when it is not supplied.
type Tax struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"not null" json:"name"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tax) TableName() string { return "taxes" }
