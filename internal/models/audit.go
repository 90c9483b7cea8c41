package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of who did what. Write-only: the
// application has no read path for it.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string         `gorm:"type:varchar(64);not null;index" json:"actor_id"`
	OrgID      *string        `gorm:"type:varchar(64)" json:"org_id"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(64);not null" json:"entity_id"`
	Action     string         `gorm:"type:varchar(50);not null" json:"action"`
	Details    datatypes.JSON `gorm:"type:json" json:"details"`
	PrevHash   *string        `gorm:"type:varchar(128)" json:"prev_hash"`
	EventHash  *string        `gorm:"type:varchar(128)" json:"event_hash"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ChainTemplate is a supervisor-managed decomposition template.
type ChainTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Steps     datatypes.JSON `gorm:"type:json" json:"steps"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

func (t *ChainTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
