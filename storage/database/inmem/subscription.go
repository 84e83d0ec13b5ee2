package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/PeaceIshola/eduhub/core/subscription"
)

type subscriptionRepository struct {
	db *subscriptionTable
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *DB) *subscriptionRepository {
	return &subscriptionRepository{db: db.subscription}
}

func (repo *subscriptionRepository) CreateSubscription(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subscriptionRepository) ListSubscriptionsByUser(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subs []subscription.Subscription
	for _, sub := range repo.db.table {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].StartsAt.After(subs[j].StartsAt) })
	return subs, nil
}

func (repo *subscriptionRepository) GetSubscriptionByID(ctx context.Context, id string) (subscription.Subscription, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (repo *subscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, id string, status subscription.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return subscription.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *subscriptionRepository) ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	seen := make(map[string]bool)
	var userIDs []string
	for _, sub := range repo.db.table {
		if sub.Status != subscription.StatusActive || sub.ExpiresAt == nil || sub.ExpiresAt.After(now) {
			continue
		}
		sub.Status = subscription.StatusExpired
		sub.UpdatedAt = now
		if !seen[sub.UserID] {
			seen[sub.UserID] = true
			userIDs = append(userIDs, sub.UserID)
		}
	}
	return userIDs, nil
}
