package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BankAccount is a payee account printed on invoices.
type BankAccount struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountName   string       `gorm:"not null" json:"account_name"`
	AccountNumber string       `gorm:"not null" json:"account_number"`
	IFSC          string       `gorm:"column:ifsc" json:"ifsc"`
	BankName      string       `json:"bank_name"`
	BranchName    string       `json:"branch_name"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BankAccount) TableName() string { return "bank_accounts" }
