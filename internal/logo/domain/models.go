package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Logo is one uploaded branding image. The newest row is the active logo;
// older rows are kept for history.
type Logo struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FileName    string       `gorm:"not null" json:"file_name"`
	StoredPath  string       `gorm:"not null" json:"stored_path"`
	ContentType string       `json:"content_type"`
	Size        int64        `gorm:"not null;default:0" json:"size"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Logo) TableName() string { return "logos" }
