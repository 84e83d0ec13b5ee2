package user

import (
	"context"
	"strconv"
	"testing"

	"github.com/PeaceIshola/eduhub/core"
)

// nopLogger avoids importing services/logger, which depends on this package.
type nopLogger struct{}

func (nopLogger) Enable(enabled bool)                   {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}

// fakeRepository is a minimal in-memory Repository for service tests.
type fakeRepository struct {
	users map[string]User
	seq   int
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[string]User)}
}

func (r *fakeRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error {
	for _, usr := range r.users {
		excluded := false
		for _, exclUsr := range excludedUsers {
			if usr.ID == exclUsr.ID {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if username != "" && usr.Username == username {
			return ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepository) CreateUser(ctx context.Context, usr User) (User, error) {
	r.seq++
	usr.ID = strconv.Itoa(r.seq)
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepository) QueryAllUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, usr)
	}
	return users, nil
}

func (r *fakeRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (r *fakeRepository) GetUserByUsername(ctx context.Context, username string) (User, error) {
	for _, usr := range r.users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	for _, usr := range r.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error) {
	for _, usr := range r.users {
		if usr.Username == username || usr.Email == username {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepository) FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error) {
	return r.QueryAllUsers(ctx)
}

func (r *fakeRepository) UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error) {
	orig, ok := r.users[usr.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Username != "" {
		orig.Username = usr.Username
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if len(usr.Roles) > 0 {
		orig.Roles = usr.Roles
	}
	if len(usr.PasswordHash) > 0 {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.SetActive(*isActive)
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}
	r.users[usr.ID] = orig
	return orig, nil
}

func (r *fakeRepository) UpdateOrCreateUser(ctx context.Context, usr User) (User, error) {
	if usr.ID == "" {
		return r.CreateUser(ctx, usr)
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

// recordingMailService captures sent messages instead of delivering them.
type recordingMailService struct {
	sent []*core.EmailMessage
}

func (svc *recordingMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func TestService_Create_sendsWelcomeEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	mailSvc := &recordingMailService{}
	svc := NewService(repo, mailSvc, nopLogger{})

	usr, err := svc.Create(ctx, NewUser{
		Name:     "Student",
		Username: "student",
		Email:    "student@test.test",
		Password: "s3cr3t!",
		Roles:    []Role{RoleStudent},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if usr.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if !usr.Active() {
		t.Error("Create() user should be active")
	}
	if err := usr.CheckPassword("s3cr3t!"); err != nil {
		t.Errorf("CheckPassword() error = %v, want nil", err)
	}
	if len(mailSvc.sent) != 1 {
		t.Fatalf("welcome emails sent = %d, want 1", len(mailSvc.sent))
	}
	if to := mailSvc.sent[0].To[0].Address; to != "student@test.test" {
		t.Errorf("welcome email recipient = %q, want %q", to, "student@test.test")
	}

	// a user without an email address gets no welcome email
	if _, err = svc.Create(ctx, NewUser{Name: "NoMail", Username: "nomail", Password: "s3cr3t!"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(mailSvc.sent) != 1 {
		t.Errorf("welcome emails sent = %d, want 1", len(mailSvc.sent))
	}
}

func TestService_GetRoles(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, &recordingMailService{}, nopLogger{})

	active := User{Name: "T", Username: "teach", Roles: []Role{RoleTeacher, RoleStudent}}
	active.SetActive(true)
	active, _ = repo.CreateUser(ctx, active)

	inactive := User{Name: "I", Username: "gone", Roles: []Role{RoleAdmin}}
	inactive.SetActive(false)
	inactive, _ = repo.CreateUser(ctx, inactive)

	tests := []struct {
		name   string
		userID string
		want   []Role
	}{
		{name: "empty id", userID: "", want: nil},
		{name: "unknown user", userID: "404", want: nil},
		{name: "inactive user holds no roles", userID: inactive.ID, want: nil},
		{name: "active user", userID: active.ID, want: []Role{RoleTeacher, RoleStudent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetRoles(ctx, tt.userID)
			if err != nil {
				t.Fatalf("GetRoles() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetRoles() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("GetRoles() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestService_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, &recordingMailService{}, nopLogger{})

	taken := User{Name: "T", Username: "taken", Email: "taken@test.test"}
	taken, _ = repo.CreateUser(ctx, taken)

	if err := svc.CheckUniqueness("fresh", "fresh@test.test"); err != nil {
		t.Errorf("CheckUniqueness() error = %v, want nil", err)
	}

	err := svc.CheckUniqueness("taken", "fresh@test.test")
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckUniqueness() error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) == 0 || vErr.Fields[0].Field != "username" {
		t.Errorf("ValidationError fields = %v, want username", vErr.Fields)
	}

	// the original owner is excluded when updating
	if err = svc.CheckUniqueness("taken", "taken@test.test", taken); err != nil {
		t.Errorf("CheckUniqueness() with exclusion error = %v, want nil", err)
	}
}
