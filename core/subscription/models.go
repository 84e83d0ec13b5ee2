package subscription

import (
	"time"

	"github.com/PeaceIshola/eduhub/core"
)

// Tier is a closed set of subscription levels.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

func ValidTier(t Tier) bool {
	return t == TierFree || t == TierPremium
}

// Status is a closed set of subscription states.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusExpired:
		return true
	}
	return false
}

// PremiumDuration is how long a premium subscription runs from creation.
const PremiumDuration = 365 * 24 * time.Hour

// Subscription entitles one user to one subject at one tier. Several rows may
// exist per (user, subject) pair over time; at most one is treated as active
// at any evaluation instant.
type Subscription struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	SubjectID string     `json:"subject_id"`
	Tier      Tier       `json:"tier"`
	Status    Status     `json:"status"`
	StartsAt  time.Time  `json:"starts_at"`            // UTC
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // UTC; nil means no expiry
	CreatedAt time.Time  `json:"created_at"`           // UTC
	UpdatedAt time.Time  `json:"updated_at"`           // UTC
}

// ValidAt reports whether the subscription is currently valid at ts:
// status is active and the expiry, if any, is strictly in the future.
func (s Subscription) ValidAt(ts time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.ExpiresAt == nil {
		return true
	}
	return s.ExpiresAt.After(ts)
}

// IsPremium reports whether the subscription carries the premium tier.
func (s Subscription) IsPremium() bool {
	return s.Tier == TierPremium
}

// NewSubscription contains information needed to subscribe a user to a subject.
type NewSubscription struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Tier      Tier   `json:"tier" validate:"omitempty,tier"`
}

func (ns *NewSubscription) Validate() error {
	ns.SubjectID = core.CleanString(ns.SubjectID)
	if ns.Tier == "" {
		ns.Tier = TierFree
	}
	return core.Validate.Struct(ns)
}
