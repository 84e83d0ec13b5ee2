package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/PeaceIshola/eduhub/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) query() []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.table))
	for _, sub := range repo.db.table {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects
}

func (repo *subjectRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.table {
		if sub.Code == code {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.New().String()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) GetSubjectByCode(ctx context.Context, code string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.table {
		if sub.Code == code {
			return *sub, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
