package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subject"
)

const subjectColumns = `id, code, name, description, created_at, updated_at`

type subjectRow struct {
	ID          string      `db:"id"`
	Code        string      `db:"code"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

var subjectOrdering = core.DBOrdering{Field: "code", Ascending: true}

type subjectRepository struct {
	exec core.DBExecutor
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{exec: exec}
}

func (repo subjectRepository) row(sub subject.Subject) subjectRow {
	row := subjectRow{
		Code:        sub.Code,
		Name:        sub.Name,
		Description: null.NewString(sub.Description, sub.Description != ""),
		CreatedAt:   null.NewTime(sub.CreatedAt.UTC(), !sub.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(sub.UpdatedAt.UTC(), !sub.UpdatedAt.IsZero()),
	}
	if sub.ID != "" {
		row.ID = sub.ID
	}
	return row
}

func (repo subjectRepository) unrow(row subjectRow) subject.Subject {
	return subject.Subject{
		ID:          row.ID,
		Code:        row.Code,
		Name:        row.Name,
		Description: row.Description.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return subject.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM subject WHERE code = $1)`
	if err := repo.exec.GetContext(ctx, &exists, query, code); err != nil {
		return errors.Wrap(err, "checking subject code uniqueness")
	}
	if exists {
		return subject.ErrCodeExists
	}
	return nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.ID = uuid.New().String()
	row := repo.row(sub)
	query := `
		INSERT INTO subject (id, code, name, description, created_at, updated_at)
		VALUES (:id, :code, :name, :description, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, query, row); err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return repo.unrow(row), nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	var rows []subjectRow
	query := `SELECT ` + subjectColumns + ` FROM subject ORDER BY ` + subjectOrdering.String()
	if err := repo.exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, repo.unrow(row))
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subject.Subject{}, subject.ErrNotFound
	}
	var row subjectRow
	query := `SELECT ` + subjectColumns + ` FROM subject WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject by ID")
	}
	return repo.unrow(row), nil
}

func (repo subjectRepository) GetSubjectByCode(ctx context.Context, code string) (subject.Subject, error) {
	var row subjectRow
	query := `SELECT ` + subjectColumns + ` FROM subject WHERE code = $1`
	if err := repo.exec.GetContext(ctx, &row, query, code); err != nil {
		return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject by code")
	}
	return repo.unrow(row), nil
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM subject WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	if _, err = repo.exec.ExecContext(ctx, repo.exec.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return nil
}
