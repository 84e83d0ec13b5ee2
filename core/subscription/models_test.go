package subscription

import (
	"testing"
	"time"
)

func TestSubscription_ValidAt(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	tPtr := func(ts time.Time) *time.Time { return &ts }

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{name: "active, no expiry", sub: Subscription{Status: StatusActive}, want: true},
		{name: "active, future expiry", sub: Subscription{Status: StatusActive, ExpiresAt: tPtr(now.Add(time.Second))}, want: true},
		{name: "active, expiry exactly now", sub: Subscription{Status: StatusActive, ExpiresAt: tPtr(now)}, want: false},
		{name: "active, past expiry", sub: Subscription{Status: StatusActive, ExpiresAt: tPtr(now.Add(-time.Second))}, want: false},
		{name: "inactive", sub: Subscription{Status: StatusInactive}, want: false},
		{name: "expired status, future expiry", sub: Subscription{Status: StatusExpired, ExpiresAt: tPtr(now.Add(time.Hour))}, want: false},
		{name: "zero value", sub: Subscription{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.ValidAt(now); got != tt.want {
				t.Errorf("ValidAt() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestNewSubscription_Validate(t *testing.T) {
	ns := NewSubscription{SubjectID: "  sub1  "}
	if err := ns.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if ns.SubjectID != "sub1" {
		t.Errorf("SubjectID not cleaned: %q", ns.SubjectID)
	}
	if ns.Tier != TierFree {
		t.Errorf("Tier did not default to free: %q", ns.Tier)
	}

	ns = NewSubscription{SubjectID: "sub1", Tier: "platinum"}
	if err := ns.Validate(); err == nil {
		t.Error("Validate() should reject unknown tiers")
	}

	ns = NewSubscription{Tier: TierPremium}
	if err := ns.Validate(); err == nil {
		t.Error("Validate() should require a subject")
	}
}
