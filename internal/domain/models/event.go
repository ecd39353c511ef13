package models

import (
	"time"

	"github.com/google/uuid"
)

// EventSeverity classifies how urgent an event is for downstream consumers.
type EventSeverity string

const (
	SeverityInfo    EventSeverity = "INFO"
	SeverityWarning EventSeverity = "WARNING"
	SeverityError   EventSeverity = "ERROR"
)

// Event categories group events by the entity they concern.
const (
	CategoryArticle = "article"
	CategoryReorder = "reorder"
)

// Event is the structured record handed to the event sink. Delivery is
// best-effort; producers never fail on a publish error.
type Event struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Severity  EventSeverity `json:"severity"`
	BranchID  int64         `json:"branchId"`
	ArticleID int64         `json:"articleId,omitempty"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewEvent stamps a fresh event with an id and the current time.
func NewEvent(category string, severity EventSeverity, branchID, articleID int64, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Category:  category,
		Severity:  severity,
		BranchID:  branchID,
		ArticleID: articleID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
