package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Invoice items copy Name and UnitCost at write
// time, so later price edits never change historical invoices.
type Product struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
