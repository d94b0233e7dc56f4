package models

import "time"

// SuggestionType identifies which mutation a suggestion proposes.
type SuggestionType string

const (
	SuggestionCreate SuggestionType = "create"
	SuggestionUpdate SuggestionType = "update"
	SuggestionDelete SuggestionType = "delete"
)

// SuggestionStatus is the review state of a suggestion. Transitions go
// pending -> approved or pending -> rejected, never back.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// EditSuggestion is a proposed create/update/delete awaiting moderation.
// Once reviewed it is inert for the workflow but retained for audit.
type EditSuggestion struct {
	ID            string           `json:"id" db:"id"`
	LocationID    *string          `json:"location_id" db:"location_id"`
	SuggestedBy   string           `json:"suggested_by" db:"suggested_by"`
	Type          SuggestionType   `json:"suggestion_type" db:"suggestion_type"`
	SuggestedData LocationFormData `json:"suggested_data" db:"suggested_data"`
	Status        SuggestionStatus `json:"status" db:"status"`
	ReviewedBy    *string          `json:"reviewed_by" db:"reviewed_by"`
	ReviewNotes   *string          `json:"review_notes" db:"review_notes"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	ReviewedAt    *time.Time       `json:"reviewed_at" db:"reviewed_at"`
}
