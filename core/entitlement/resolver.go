package entitlement

import (
	"context"
	"time"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
)

var NowFunc = time.Now // mockable

// Outcome tags the result of an access evaluation. Guards branch on it and on
// nothing else: provider errors never cross the resolver boundary.
type Outcome string

const (
	// OutcomeUnauthenticated means there is no signed-in user and the feature
	// needs one; the guard should prompt for sign-in.
	OutcomeUnauthenticated Outcome = "unauthenticated"
	// OutcomeDenied means the user is signed in but holds no qualifying
	// subscription; the guard should prompt for an upgrade.
	OutcomeDenied Outcome = "denied"
	OutcomeAllowed Outcome = "allowed"
)

// Decision is the computed access result for one (user, feature) evaluation.
// It is never persisted.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// Bypass is set when access was granted purely on role (teacher/admin),
	// independent of any subscription.
	Bypass bool   `json:"bypass"`
	Reason string `json:"reason"`
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllowed }

type (
	// RoleProvider resolves the roles held by a user. No user resolves to the
	// empty set. Implemented by *user.Service.
	RoleProvider interface {
		GetRoles(ctx context.Context, userID string) ([]user.Role, error)
	}

	// SubscriptionProvider resolves all of a user's subscriptions regardless
	// of validity. Implemented by *subscription.Service.
	SubscriptionProvider interface {
		ListByUser(ctx context.Context, userID string) ([]subscription.Subscription, error)
	}

	// Snapshot is a cached copy of one user's provider data.
	Snapshot struct {
		Roles         []user.Role                 `json:"roles"`
		Subscriptions []subscription.Subscription `json:"subscriptions"`
		FetchedAt     time.Time                   `json:"fetched_at"`
	}

	// SnapshotCache caches provider snapshots with a bounded TTL. Mutations
	// (subscription creation, role changes) must call InvalidateUser.
	SnapshotCache interface {
		GetSnapshot(ctx context.Context, userID string) (Snapshot, bool, error)
		SetSnapshot(ctx context.Context, userID string, snap Snapshot) error
		InvalidateUser(ctx context.Context, userID string) error
	}

	// Resolver decides whether a user may use a feature. It owns no state
	// beyond its injected collaborators; evaluations are independent and
	// deterministic for fixed provider data.
	Resolver struct {
		roles  RoleProvider
		subs   SubscriptionProvider
		policy Policy
		cache  SnapshotCache // optional
		log    core.Logger
	}
)

func NewResolver(roles RoleProvider, subs SubscriptionProvider, policy Policy, cache SnapshotCache, log core.Logger) *Resolver {
	return &Resolver{
		roles:  roles,
		subs:   subs,
		policy: policy,
		cache:  cache,
		log:    log,
	}
}

// Evaluate runs the access algorithm over already-fetched data. The order of
// the checks encodes precedence and must not change:
//
//  1. teacher/admin roles always win, regardless of subscription state;
//  2. free-tier features are open to everyone, signed in or not;
//  3. otherwise any currently valid premium subscription grants access
//     (to ANY premium feature, not just the subscribed subject);
//  4. otherwise deny, distinguishing "no user" from "wrong tier".
func (r *Resolver) Evaluate(authenticated bool, roles []user.Role, subs []subscription.Subscription, feature Feature, now time.Time) Decision {
	for _, role := range roles {
		if role == user.RoleTeacher || role == user.RoleAdmin {
			return Decision{Outcome: OutcomeAllowed, Bypass: true, Reason: "role " + string(role)}
		}
	}

	if r.policy.IsFree(feature) {
		return Decision{Outcome: OutcomeAllowed, Reason: "free feature"}
	}

	for _, sub := range subs {
		if sub.IsPremium() && sub.ValidAt(now) {
			return Decision{Outcome: OutcomeAllowed, Reason: "active premium subscription"}
		}
	}

	if !authenticated {
		return Decision{Outcome: OutcomeUnauthenticated, Reason: "authentication required"}
	}
	return Decision{Outcome: OutcomeDenied, Reason: "premium subscription required"}
}

// HasAccess is the boolean form of Evaluate for callers that do not care why.
func (r *Resolver) HasAccess(userID string, roles []user.Role, subs []subscription.Subscription, feature Feature) bool {
	return r.Evaluate(userID != "", roles, subs, feature, NowFunc().UTC()).Allowed()
}

// Check fetches the user's roles and subscriptions and evaluates access to a
// feature. The two provider reads are issued concurrently and both are joined
// before any decision is made. A failed read counts as an empty result: the
// resolver fails closed, it never fails open and never surfaces provider
// errors to the guard.
func (r *Resolver) Check(ctx context.Context, userID string, feature Feature) Decision {
	now := NowFunc().UTC()

	// anonymous: nothing to fetch, only steps 2 and 4 can apply
	if userID == "" {
		return r.Evaluate(false, nil, nil, feature, now)
	}

	if snap, ok := r.cachedSnapshot(ctx, userID); ok {
		return r.Evaluate(true, snap.Roles, snap.Subscriptions, feature, now)
	}

	type rolesResult struct {
		roles []user.Role
		err   error
	}
	type subsResult struct {
		subs []subscription.Subscription
		err  error
	}
	rolesCh := make(chan rolesResult, 1)
	subsCh := make(chan subsResult, 1)
	go func() {
		roles, err := r.roles.GetRoles(ctx, userID)
		rolesCh <- rolesResult{roles, err}
	}()
	go func() {
		subs, err := r.subs.ListByUser(ctx, userID)
		subsCh <- subsResult{subs, err}
	}()

	var (
		roles    []user.Role
		subs     []subscription.Subscription
		fetchErr bool
	)
	for i := 0; i < 2; i++ {
		select {
		case res := <-rolesCh:
			if res.err != nil {
				r.log.Warn("entitlement: fetching roles failed; treating as none", res.err)
				fetchErr = true
			} else {
				roles = res.roles
			}
		case res := <-subsCh:
			if res.err != nil {
				r.log.Warn("entitlement: fetching subscriptions failed; treating as none", res.err)
				fetchErr = true
			} else {
				subs = res.subs
			}
		case <-ctx.Done():
			// the consumer is gone; abandon the in-flight reads (the buffered
			// channels let them finish without blocking) and fail closed
			return Decision{Outcome: OutcomeDenied, Reason: "evaluation canceled"}
		}
	}

	// do not cache partial data
	if !fetchErr && r.cache != nil {
		snap := Snapshot{Roles: roles, Subscriptions: subs, FetchedAt: now}
		if err := r.cache.SetSnapshot(ctx, userID, snap); err != nil {
			r.log.Warn("entitlement: caching snapshot failed", err)
		}
	}

	return r.Evaluate(true, roles, subs, feature, now)
}

func (r *Resolver) cachedSnapshot(ctx context.Context, userID string) (Snapshot, bool) {
	if r.cache == nil {
		return Snapshot{}, false
	}
	snap, ok, err := r.cache.GetSnapshot(ctx, userID)
	if err != nil {
		r.log.Warn("entitlement: reading snapshot cache failed", err)
		return Snapshot{}, false
	}
	return snap, ok
}
