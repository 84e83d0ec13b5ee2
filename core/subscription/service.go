package subscription

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core"
)

var (
	// errors
	ErrNotFound         = errors.New("subscription not found")
	ErrNotAuthenticated = errors.New("sign in to subscribe")
	ErrUnknownSubject   = errors.New("unknown subject")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error)
		ListSubscriptionsByUser(ctx context.Context, userID string) ([]Subscription, error)
		GetSubscriptionByID(ctx context.Context, id string) (Subscription, error)
		UpdateSubscriptionStatus(ctx context.Context, id string, status Status) error
		// ExpireOverdueSubscriptions flips active rows whose expiry has passed
		// to expired and returns the affected user IDs.
		ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]string, error)
	}

	// CacheInvalidator drops any cached entitlement state for a user after a
	// subscription mutation. A nil invalidator is a no-op.
	CacheInvalidator interface {
		InvalidateUser(ctx context.Context, userID string) error
	}

	// EmailAddresser resolves the receipt recipient for a user ID.
	EmailAddresser interface {
		GetEmailAddress(ctx context.Context, userID string) (mail.Address, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
		cache   CacheInvalidator
		addrs   EmailAddresser
	}
)

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger, cache CacheInvalidator, addrs EmailAddresser) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, log: log, cache: cache, addrs: addrs}
}

// Create subscribes a user to a subject. The tier defaults to free; a premium
// subscription expires exactly 365 days after creation. Anonymous users
// cannot subscribe.
func (svc *Service) Create(ctx context.Context, userID string, ns NewSubscription) (Subscription, error) {
	if userID == "" {
		return Subscription{}, ErrNotAuthenticated
	}

	now := NowFunc().UTC()
	sub := Subscription{
		UserID:    userID,
		SubjectID: ns.SubjectID,
		Tier:      ns.Tier,
		Status:    StatusActive,
		StartsAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.Tier == TierPremium {
		expiry := now.Add(PremiumDuration)
		sub.ExpiresAt = &expiry
	}

	sub, err := svc.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return Subscription{}, err
	}

	svc.invalidate(ctx, userID)
	svc.sendReceipt(ctx, sub)
	return sub, nil
}

// ListByUser returns all of a user's subscriptions regardless of validity.
func (svc *Service) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	if userID == "" {
		return nil, nil
	}
	return svc.repo.ListSubscriptionsByUser(ctx, userID)
}

// ActiveForSubject returns the user's currently valid subscription for a
// subject, or ErrNotFound. When several rows are valid at once the most
// recently started one wins; this tie-break is deliberate and stable.
func (svc *Service) ActiveForSubject(ctx context.Context, userID, subjectID string) (Subscription, error) {
	subs, err := svc.ListByUser(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}

	now := NowFunc().UTC()
	var found bool
	var active Subscription
	for _, sub := range subs {
		if sub.SubjectID != subjectID || !sub.ValidAt(now) {
			continue
		}
		if !found || sub.StartsAt.After(active.StartsAt) {
			active = sub
			found = true
		}
	}
	if !found {
		return Subscription{}, ErrNotFound
	}
	return active, nil
}

// Cancel marks a subscription inactive.
func (svc *Service) Cancel(ctx context.Context, userID, id string) error {
	sub, err := svc.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return ErrNotFound
	}
	if err := svc.repo.UpdateSubscriptionStatus(ctx, id, StatusInactive); err != nil {
		return err
	}
	svc.invalidate(ctx, userID)
	return nil
}

// ExpireOverdue is the expiry sweep: it marks overdue active subscriptions
// expired and drops the affected users' cached entitlements.
func (svc *Service) ExpireOverdue(ctx context.Context) (int, error) {
	userIDs, err := svc.repo.ExpireOverdueSubscriptions(ctx, NowFunc().UTC())
	if err != nil {
		return 0, err
	}
	for _, uid := range userIDs {
		svc.invalidate(ctx, uid)
	}
	return len(userIDs), nil
}

func (svc *Service) invalidate(ctx context.Context, userID string) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.InvalidateUser(ctx, userID); err != nil {
		svc.log.Warn("invalidating entitlement cache", err)
	}
}

func (svc *Service) sendReceipt(ctx context.Context, sub Subscription) {
	if svc.addrs == nil {
		return
	}
	addr, err := svc.addrs.GetEmailAddress(ctx, sub.UserID)
	if err != nil || addr.Address == "" {
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nYour %s subscription is now active.", addr.Name, sub.Tier)
	if sub.ExpiresAt != nil {
		body += fmt.Sprintf("\nIt runs until %s.", sub.ExpiresAt.Format("2 Jan 2006"))
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{addr},
		Subject: "Subscription Confirmed",
		BodyStr: body,
	})
}
