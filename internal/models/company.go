package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CompanyDocument describes one uploaded document; the list is stored as a
// JSON column on the company row rather than its own table.
type CompanyDocument struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// CompanyInfo is the single per-user row of free-text strategic fields
// injected into chat context.
type CompanyInfo struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName      string         `gorm:"type:varchar(255)" json:"company_name"`
	Industry         string         `gorm:"type:varchar(255)" json:"industry"`
	Mission          string         `gorm:"type:text" json:"mission"`
	Vision           string         `gorm:"type:text" json:"vision"`
	Values           string         `gorm:"type:text" json:"values"`
	Culture          string         `gorm:"type:text" json:"culture"`
	Benefits         string         `gorm:"type:text" json:"benefits"`
	ProductsServices string         `gorm:"type:text" json:"products_services"`
	Policies         string         `gorm:"type:text" json:"policies"`
	Documents        datatypes.JSON `gorm:"type:json" json:"documents"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (c *CompanyInfo) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
