package subject

import (
	"context"
	"testing"

	"github.com/PeaceIshola/eduhub/core"
)

// fakeRepository backs validation tests without a database.
type fakeRepository struct {
	codes map[string]bool
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository(codes ...string) *fakeRepository {
	repo := &fakeRepository{codes: make(map[string]bool)}
	for _, code := range codes {
		repo.codes[code] = true
	}
	return repo
}

func (r *fakeRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	if r.codes[code] {
		return ErrCodeExists
	}
	return nil
}

func (r *fakeRepository) CreateSubject(ctx context.Context, sub Subject) (Subject, error) {
	r.codes[sub.Code] = true
	return sub, nil
}

func (r *fakeRepository) QueryAllSubjects(ctx context.Context) ([]Subject, error) { return nil, nil }

func (r *fakeRepository) GetSubjectByID(ctx context.Context, id string) (Subject, error) {
	return Subject{}, ErrNotFound
}

func (r *fakeRepository) GetSubjectByCode(ctx context.Context, code string) (Subject, error) {
	return Subject{}, ErrNotFound
}

func (r *fakeRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error { return nil }

func TestNewSubject_Validate(t *testing.T) {
	svc := NewService(newFakeRepository("MATH"))

	tests := []struct {
		name    string
		ns      NewSubject
		wantErr bool
	}{
		{name: "valid", ns: NewSubject{Code: "BST", Name: "Basic Science & Technology"}},
		{name: "code trimmed", ns: NewSubject{Code: "  PVS  ", Name: "Pre-Vocational Studies"}},
		{name: "missing code", ns: NewSubject{Name: "Mystery"}, wantErr: true},
		{name: "missing name", ns: NewSubject{Code: "ENG"}, wantErr: true},
		{name: "lowercase code", ns: NewSubject{Code: "eng", Name: "English"}, wantErr: true},
		{name: "code too short", ns: NewSubject{Code: "E", Name: "English"}, wantErr: true},
		{name: "code too long", ns: NewSubject{Code: "ENGLISH", Name: "English"}, wantErr: true},
		{name: "duplicate code", ns: NewSubject{Code: "MATH", Name: "Mathematics"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ns.Validate(svc); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_CheckCodeUniqueness(t *testing.T) {
	svc := NewService(newFakeRepository("MATH"))

	if err := svc.CheckCodeUniqueness("BST"); err != nil {
		t.Errorf("CheckCodeUniqueness() error = %v, want nil", err)
	}

	err := svc.CheckCodeUniqueness("MATH")
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckCodeUniqueness() error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) == 0 || vErr.Fields[0].Field != "code" {
		t.Errorf("ValidationError fields = %v, want code", vErr.Fields)
	}
}
