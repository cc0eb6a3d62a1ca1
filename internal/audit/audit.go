// Package audit records successful mutating requests as append-only log
// entries. Recording happens after the response and never affects it.
package audit

import (
	"net/http"
	"time"

	auditDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/audit"
	"github.com/amit1797/Eduadmin-sub000/internal/core/events"
	"github.com/google/uuid"
)

const EventTypeRecorded = "audit.recorded"

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ActionFor maps a mutating HTTP method onto its audit action.
func ActionFor(method string) (Action, bool) {
	switch method {
	case http.MethodPost:
		return ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate, true
	case http.MethodDelete:
		return ActionDelete, true
	default:
		return "", false
	}
}

// Entry is one audit log record. OldValues and NewValues hold JSON text.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Action     Action    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *string   `json:"resourceId,omitempty"`
	OldValues  *string   `json:"oldValues,omitempty"`
	NewValues  *string   `json:"newValues,omitempty"`
	SchoolID   *string   `json:"schoolId,omitempty"`
	IPAddress  *string   `json:"ipAddress,omitempty"`
	UserAgent  *string   `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *Entry) ToDataModel() *auditDatamodel.Log {
	return &auditDatamodel.Log{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     string(e.Action),
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		OldValues:  e.OldValues,
		NewValues:  e.NewValues,
		SchoolID:   e.SchoolID,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	}
}

func FromDataModel(l *auditDatamodel.Log) *Entry {
	return &Entry{
		ID:         l.ID,
		UserID:     l.UserID,
		Action:     Action(l.Action),
		Resource:   l.Resource,
		ResourceID: l.ResourceID,
		OldValues:  l.OldValues,
		NewValues:  l.NewValues,
		SchoolID:   l.SchoolID,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		CreatedAt:  l.CreatedAt,
	}
}

// RecordedEvent carries an entry from the HTTP path to the recorder.
type RecordedEvent struct {
	events.BaseEvent
	Entry Entry `json:"entry"`
}

func NewRecordedEvent(entry Entry) *RecordedEvent {
	return &RecordedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeRecorded,
			Timestamp: entry.CreatedAt,
			Data: map[string]interface{}{
				"user_id":  entry.UserID,
				"action":   string(entry.Action),
				"resource": entry.Resource,
			},
		},
		Entry: entry,
	}
}
