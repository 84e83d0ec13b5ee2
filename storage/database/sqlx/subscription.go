package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subscription"
)

const subscriptionColumns = `id, user_id, subject_id, tier, status, starts_at, expires_at, created_at, updated_at`

type subscriptionRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	SubjectID string    `db:"subject_id"`
	Tier      string    `db:"tier"`
	Status    string    `db:"status"`
	StartsAt  time.Time `db:"starts_at"`
	ExpiresAt null.Time `db:"expires_at"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

// most recent first so tie-breaks surface the latest subscription
var subscriptionOrdering = core.DBOrdering{Field: "starts_at"}

type subscriptionRepository struct {
	exec core.DBExecutor
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(exec core.DBExecutor) *subscriptionRepository {
	return &subscriptionRepository{exec: exec}
}

func (repo subscriptionRepository) row(sub subscription.Subscription) subscriptionRow {
	row := subscriptionRow{
		UserID:    sub.UserID,
		SubjectID: sub.SubjectID,
		Tier:      string(sub.Tier),
		Status:    string(sub.Status),
		StartsAt:  sub.StartsAt.UTC(),
		CreatedAt: null.NewTime(sub.CreatedAt.UTC(), !sub.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(sub.UpdatedAt.UTC(), !sub.UpdatedAt.IsZero()),
	}
	if sub.ExpiresAt != nil {
		row.ExpiresAt = null.TimeFrom(sub.ExpiresAt.UTC())
	}
	if sub.ID != "" {
		row.ID = sub.ID
	}
	return row
}

func (repo subscriptionRepository) unrow(row subscriptionRow) subscription.Subscription {
	return subscription.Subscription{
		ID:        row.ID,
		UserID:    row.UserID,
		SubjectID: row.SubjectID,
		Tier:      subscription.Tier(row.Tier),
		Status:    subscription.Status(row.Status),
		StartsAt:  row.StartsAt,
		ExpiresAt: row.ExpiresAt.Ptr(),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func (repo subscriptionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return subscription.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subscriptionRepository) CreateSubscription(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	sub.ID = uuid.New().String()
	row := repo.row(sub)
	query := `
		INSERT INTO subscription (id, user_id, subject_id, tier, status, starts_at, expires_at, created_at, updated_at)
		VALUES (:id, :user_id, :subject_id, :tier, :status, :starts_at, :expires_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, query, row); err != nil {
		return subscription.Subscription{}, errors.Wrap(err, "inserting subscription")
	}
	return repo.unrow(row), nil
}

func (repo subscriptionRepository) ListSubscriptionsByUser(ctx context.Context, userID string) ([]subscription.Subscription, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	var rows []subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscription WHERE user_id = $1 ORDER BY ` + subscriptionOrdering.String()
	if err := repo.exec.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "listing subscriptions")
	}
	subs := make([]subscription.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, repo.unrow(row))
	}
	return subs, nil
}

func (repo subscriptionRepository) GetSubscriptionByID(ctx context.Context, id string) (subscription.Subscription, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	var row subscriptionRow
	query := `SELECT ` + subscriptionColumns + ` FROM subscription WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return subscription.Subscription{}, repo.trapNoRowsErr(err, "finding subscription by ID")
	}
	return repo.unrow(row), nil
}

func (repo subscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, id string, status subscription.Status) error {
	query := `UPDATE subscription SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.exec.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating subscription status")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating subscription status")
	}
	if cnt == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (repo subscriptionRepository) ExpireOverdueSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		UPDATE subscription SET status = $1, updated_at = $2
		WHERE status = $3 AND expires_at IS NOT NULL AND expires_at <= $2
		RETURNING user_id`
	rows, err := repo.exec.QueryxContext(ctx, query, string(subscription.StatusExpired), now.UTC(), string(subscription.StatusActive))
	if err != nil {
		return nil, errors.Wrap(err, "expiring subscriptions")
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	var userIDs []string
	for rows.Next() {
		var uid string
		if err = rows.Scan(&uid); err != nil {
			return nil, errors.Wrap(err, "expiring subscriptions")
		}
		if !seen[uid] {
			seen[uid] = true
			userIDs = append(userIDs, uid)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "expiring subscriptions")
	}
	return userIDs, nil
}
