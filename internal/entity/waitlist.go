package entity

import (
	"context"
	"errors"
	"time"
)

type WaitlistStatus string

const (
	WaitlistActive    WaitlistStatus = "ACTIVE"
	WaitlistConverted WaitlistStatus = "CONVERTED"
	WaitlistRemoved   WaitlistStatus = "REMOVED"
)

var ErrInvalidWaitlistTransition = errors.New("transição de status da waitlist inválida")

func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistActive, WaitlistConverted, WaitlistRemoved:
		return true
	}
	return false
}

// CanTransitionTo só permite avançar: ACTIVE -> CONVERTED | REMOVED.
func (s WaitlistStatus) CanTransitionTo(next WaitlistStatus) bool {
	return s == WaitlistActive && (next == WaitlistConverted || next == WaitlistRemoved)
}

type WaitlistEntry struct {
	ID                      int64           `json:"id"`
	LeadID                  int64           `json:"lead_id"`
	EnrollmentAttemptAt     time.Time       `json:"enrollment_attempt_at"`
	NotificationPreferences map[string]bool `json:"notification_preferences"`
	Status                  WaitlistStatus  `json:"status"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// NewWaitlistEntry monta uma entrada ACTIVE com a tentativa registrada agora.
func NewWaitlistEntry(leadID int64, prefs map[string]bool, now time.Time) *WaitlistEntry {
	if prefs == nil {
		prefs = map[string]bool{}
	}
	return &WaitlistEntry{
		LeadID:                  leadID,
		EnrollmentAttemptAt:     now,
		NotificationPreferences: prefs,
		Status:                  WaitlistActive,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Transition aplica a mudança de status respeitando a ordem.
func (w *WaitlistEntry) Transition(next WaitlistStatus, now time.Time) error {
	if !w.Status.CanTransitionTo(next) {
		return ErrInvalidWaitlistTransition
	}
	w.Status = next
	w.UpdatedAt = now
	return nil
}

type WaitlistRepositoryInterface interface {
	Create(ctx context.Context, entry *WaitlistEntry) error
	FindByID(ctx context.Context, id int64) (*WaitlistEntry, error)
	FindByLeadID(ctx context.Context, leadID int64) (*WaitlistEntry, error)
	// UpdateStatus só altera se o status atual ainda for from (compare-and-set).
	UpdateStatus(ctx context.Context, id int64, from, to WaitlistStatus) (*WaitlistEntry, error)
}
