package services

import (
	"encoding/json"
	"time"

	"github.com/emploai/emploai-server/internal/logger"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"gorm.io/datatypes"
)

// AuditEvent is one append-only record of who did what.
type AuditEvent struct {
	ActorID    string
	OrgID      *string
	EntityType string
	EntityID   string
	Action     string
	Ts         time.Time
	Details    map[string]interface{}
}

// AuditService is a fire-and-forget sink. Append failures are logged and
// never propagated; nothing user-facing ever blocks on the audit trail.
type AuditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends one event, best effort.
func (s *AuditService) Record(event AuditEvent) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.Append(event); err != nil {
		logger.Warn("audit append failed",
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"action", event.Action,
			"err", err)
	}
}

// Append writes one event and reports the error to callers that care
// (the gateway handler logs it; everyone else goes through Record).
func (s *AuditService) Append(event AuditEvent) error {
	ts := event.Ts
	if ts.IsZero() {
		ts = time.Now()
	}

	entry := &models.AuditLog{
		ActorID:    event.ActorID,
		OrgID:      event.OrgID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Action:     event.Action,
		CreatedAt:  ts,
	}
	if event.Details != nil {
		if data, err := json.Marshal(event.Details); err == nil {
			entry.Details = datatypes.JSON(data)
		}
	}
	return s.repo.Append(entry)
}
