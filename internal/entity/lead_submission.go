package entity

import (
	"context"
	"time"
)

type SubmissionType string

const (
	SubmissionEbook      SubmissionType = "ebook"
	SubmissionContact    SubmissionType = "contact"
	SubmissionEnrollment SubmissionType = "enrollment"
	SubmissionWaitlist   SubmissionType = "waitlist"
)

func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionEbook, SubmissionContact, SubmissionEnrollment, SubmissionWaitlist:
		return true
	}
	return false
}

// LeadSubmission é append-only: criada uma vez por interação no funil.
type LeadSubmission struct {
	ID        int64          `json:"id"`
	LeadID    int64          `json:"lead_id"`
	Type      SubmissionType `json:"type"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

type LeadSubmissionRepositoryInterface interface {
	Create(ctx context.Context, submission *LeadSubmission) error
	ListByLeadID(ctx context.Context, leadID int64) ([]*LeadSubmission, error)
}
