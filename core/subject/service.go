package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		GetSubjectByCode(ctx context.Context, code string) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckCodeUniqueness(code string) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Code:        ns.Code,
		Name:        ns.Name,
		Description: ns.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) GetByCode(ctx context.Context, code string) (Subject, error) {
	return svc.repo.GetSubjectByCode(ctx, core.CleanString(code))
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}
