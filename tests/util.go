package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
	"github.com/PeaceIshola/eduhub/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(t *testing.T, repo subject.Repository, code, name string) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateSubscription(
	t *testing.T,
	repo subscription.Repository,
	userID, subjectID string,
	tier subscription.Tier,
	status subscription.Status,
	startsAt time.Time,
	expiresAt *time.Time,
) subscription.Subscription {
	t.Helper()

	sub, err := repo.CreateSubscription(context.Background(), subscription.Subscription{
		UserID:    userID,
		SubjectID: subjectID,
		Tier:      tier,
		Status:    status,
		StartsAt:  startsAt.UTC(),
		ExpiresAt: expiresAt,
		CreatedAt: startsAt.UTC(),
		UpdatedAt: startsAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubscription() failed: %v", err)
	}
	return sub
}
