package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMail struct{ sent int }

func (m *nopMail) SendMessages(messages ...*core.EmailMessage) { m.sent += len(messages) }

type fakeRepo struct {
	subs    []Subscription
	listErr error
	nextID  int
}

func (r *fakeRepo) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	r.nextID++
	sub.ID = "sub" + string(rune('0'+r.nextID))
	r.subs = append(r.subs, sub)
	return sub, nil
}

func (r *fakeRepo) ListSubscriptionsByUser(ctx context.Context, userID string) ([]Subscription, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetSubscriptionByID(ctx context.Context, id string) (Subscription, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return Subscription{}, ErrNotFound
}

func (r *fakeRepo) UpdateSubscriptionStatus(ctx context.Context, id string, status Status) error {
	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	var users []string
	for i := range r.subs {
		s := &r.subs[i]
		if s.Status == StatusActive && s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
			s.Status = StatusExpired
			users = append(users, s.UserID)
		}
	}
	return users, nil
}

type fakeInvalidator struct{ invalidated []string }

func (c *fakeInvalidator) InvalidateUser(ctx context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func newTestService(repo Repository, cache CacheInvalidator) *Service {
	return NewService(repo, &nopMail{}, nopLogger{}, cache, nil)
}

func frozenClock(t *testing.T, ts time.Time) {
	t.Helper()
	NowFunc = func() time.Time { return ts }
	t.Cleanup(func() { NowFunc = time.Now })
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	frozenClock(t, now)

	t.Run("premium expires exactly 365 days out", func(t *testing.T) {
		svc := newTestService(&fakeRepo{}, nil)
		sub, err := svc.Create(context.Background(), "usr1", NewSubscription{SubjectID: "sub1", Tier: TierPremium})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if sub.Status != StatusActive {
			t.Errorf("status = %v; want active", sub.Status)
		}
		if sub.ExpiresAt == nil {
			t.Fatal("premium subscription has no expiry")
		}
		if want := now.Add(365 * 24 * time.Hour); !sub.ExpiresAt.Equal(want) {
			t.Errorf("expiry = %v; want %v", sub.ExpiresAt, want)
		}
	})

	t.Run("free has no expiry", func(t *testing.T) {
		svc := newTestService(&fakeRepo{}, nil)
		sub, err := svc.Create(context.Background(), "usr1", NewSubscription{SubjectID: "sub1", Tier: TierFree})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if sub.ExpiresAt != nil {
			t.Errorf("free subscription has an expiry: %v", sub.ExpiresAt)
		}
		if sub.Status != StatusActive {
			t.Errorf("status = %v; want active", sub.Status)
		}
	})

	t.Run("anonymous users cannot subscribe", func(t *testing.T) {
		svc := newTestService(&fakeRepo{}, nil)
		_, err := svc.Create(context.Background(), "", NewSubscription{SubjectID: "sub1"})
		if errors.Cause(err) != ErrNotAuthenticated {
			t.Errorf("Create() err = %v; want ErrNotAuthenticated", err)
		}
	})

	t.Run("creation invalidates the entitlement cache", func(t *testing.T) {
		cache := &fakeInvalidator{}
		svc := newTestService(&fakeRepo{}, cache)
		if _, err := svc.Create(context.Background(), "usr1", NewSubscription{SubjectID: "sub1"}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if len(cache.invalidated) != 1 || cache.invalidated[0] != "usr1" {
			t.Errorf("invalidated = %v; want [usr1]", cache.invalidated)
		}
	})
}

func TestService_ActiveForSubject(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	frozenClock(t, now)
	tPtr := func(ts time.Time) *time.Time { return &ts }

	repo := &fakeRepo{subs: []Subscription{
		{ID: "old", UserID: "usr1", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive, StartsAt: now.Add(-48 * time.Hour), ExpiresAt: tPtr(now.Add(time.Hour))},
		{ID: "new", UserID: "usr1", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive, StartsAt: now.Add(-time.Hour), ExpiresAt: tPtr(now.Add(time.Hour))},
		{ID: "dead", UserID: "usr1", SubjectID: "sub1", Tier: TierPremium, Status: StatusExpired, StartsAt: now.Add(-time.Minute)},
		{ID: "other", UserID: "usr1", SubjectID: "sub2", Tier: TierFree, Status: StatusActive, StartsAt: now.Add(-time.Minute)},
	}}
	svc := newTestService(repo, nil)

	// most recently started valid subscription wins
	sub, err := svc.ActiveForSubject(context.Background(), "usr1", "sub1")
	if err != nil {
		t.Fatalf("ActiveForSubject() failed: %v", err)
	}
	if sub.ID != "new" {
		t.Errorf("ActiveForSubject() = %s; want the most recently started (new)", sub.ID)
	}

	if _, err := svc.ActiveForSubject(context.Background(), "usr1", "sub3"); errors.Cause(err) != ErrNotFound {
		t.Errorf("ActiveForSubject(no sub) err = %v; want ErrNotFound", err)
	}
	if _, err := svc.ActiveForSubject(context.Background(), "usr2", "sub1"); errors.Cause(err) != ErrNotFound {
		t.Errorf("ActiveForSubject(other user) err = %v; want ErrNotFound", err)
	}
}

func TestService_ListByUser_anonymous(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil)
	subs, err := svc.ListByUser(context.Background(), "")
	if err != nil {
		t.Fatalf("ListByUser() failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("ListByUser(anonymous) = %v; want none", subs)
	}
}

func TestService_ExpireOverdue(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	frozenClock(t, now)
	tPtr := func(ts time.Time) *time.Time { return &ts }

	repo := &fakeRepo{subs: []Subscription{
		{ID: "due", UserID: "usr1", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive, ExpiresAt: tPtr(now.Add(-time.Hour))},
		{ID: "edge", UserID: "usr2", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive, ExpiresAt: tPtr(now)},
		{ID: "live", UserID: "usr3", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive, ExpiresAt: tPtr(now.Add(time.Hour))},
		{ID: "free", UserID: "usr4", SubjectID: "sub1", Tier: TierFree, Status: StatusActive},
	}}
	cache := &fakeInvalidator{}
	svc := newTestService(repo, cache)

	n, err := svc.ExpireOverdue(context.Background())
	if err != nil {
		t.Fatalf("ExpireOverdue() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("ExpireOverdue() = %d; want 2", n)
	}
	if repo.subs[0].Status != StatusExpired || repo.subs[1].Status != StatusExpired {
		t.Error("overdue subscriptions were not marked expired")
	}
	if repo.subs[2].Status != StatusActive || repo.subs[3].Status != StatusActive {
		t.Error("live subscriptions must not be touched")
	}
	if len(cache.invalidated) != 2 {
		t.Errorf("invalidated = %v; want the two affected users", cache.invalidated)
	}
}

func TestService_Cancel(t *testing.T) {
	repo := &fakeRepo{subs: []Subscription{
		{ID: "s1", UserID: "usr1", SubjectID: "sub1", Tier: TierPremium, Status: StatusActive},
	}}
	cache := &fakeInvalidator{}
	svc := newTestService(repo, cache)

	if err := svc.Cancel(context.Background(), "usr2", "s1"); errors.Cause(err) != ErrNotFound {
		t.Errorf("Cancel(foreign sub) err = %v; want ErrNotFound", err)
	}
	if err := svc.Cancel(context.Background(), "usr1", "s1"); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if repo.subs[0].Status != StatusInactive {
		t.Errorf("status = %v; want inactive", repo.subs[0].Status)
	}
	if len(cache.invalidated) != 1 {
		t.Error("cancel did not invalidate the cache")
	}
}

var _ core.EmailService = (*nopMail)(nil)
