package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/user"
)

const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

var userOrdering = core.DBOrdering{Field: "created_at", Ascending: true}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) row(usr user.User) userRow {
	roles := make(pq.StringArray, 0, len(usr.Roles))
	for _, role := range usr.Roles {
		roles = append(roles, string(role))
	}
	row := userRow{
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        roles,
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
	if usr.ID != "" {
		row.ID = usr.ID
	}
	return row
}

func (repo userRepository) unrow(row userRow) user.User {
	roles := make([]user.Role, 0, len(row.Roles))
	for _, role := range row.Roles {
		roles = append(roles, user.Role(role))
	}
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

func (repo userRepository) unrowSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unrow(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) exists(ctx context.Context, field, value string, excludedUsers []user.User) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE ` + field + ` = ?`
	args := []interface{}{value}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	query += `)`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return false, err
	}

	var exists bool
	if err = repo.exec.GetContext(ctx, &exists, repo.exec.Rebind(query), args...); err != nil {
		return false, err
	}
	return exists, nil
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	if username != "" {
		taken, err := repo.exists(ctx, "username", username, excludedUsers)
		if err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if taken {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		taken, err := repo.exists(ctx, "email", email, excludedUsers)
		if err != nil {
			return errors.Wrap(err, "checking email uniqueness")
		}
		if taken {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.row(usr)
	query := `
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM "user" ORDER BY ` + userOrdering.String()
	if err := repo.exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	query := `SELECT ` + userColumns + ` FROM "user" WHERE id = $1`
	if err := repo.exec.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM "user" WHERE username = $1`
	if err := repo.exec.GetContext(ctx, &row, query, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by username")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM "user" WHERE email = $1`
	if err := repo.exec.GetContext(ctx, &row, query, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM "user" WHERE username = $1 OR email = $1`
	if err := repo.exec.GetContext(ctx, &row, query, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var conds []string
	var args []interface{}

	// users with Name, Username or Email matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, `(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`)
		args = append(args, val, val, val)
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		roleConds := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roleConds = append(roleConds, `EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE ?)`)
			args = append(args, string(role)+"%")
		}
		conds = append(conds, `(`+strings.Join(roleConds, " OR ")+`)`)
	}
	if filter.IsActive != nil {
		conds = append(conds, `is_active = ?`)
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, `created_at >= ?`)
		args = append(args, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, `created_at <= ?`)
		args = append(args, filter.CreatedTo.UTC())
	}

	query := `SELECT ` + userColumns + ` FROM "user"`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY ` + userOrdering.String()

	var rows []userRow
	if err := repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	// only save set fields
	var sets []string
	var args []interface{}

	if usr.Name != "" {
		sets = append(sets, `name = ?`)
		args = append(args, usr.Name)
	}
	if usr.Username != "" {
		sets = append(sets, `username = ?`)
		args = append(args, usr.Username)
	}
	if usr.Email != "" {
		sets = append(sets, `email = ?`)
		args = append(args, usr.Email)
	}
	if usr.Roles != nil {
		roles := make(pq.StringArray, 0, len(usr.Roles))
		for _, role := range usr.Roles {
			roles = append(roles, string(role))
		}
		sets = append(sets, `roles = ?`)
		args = append(args, roles)
	}
	if usr.PasswordHash != nil {
		sets = append(sets, `password_hash = ?`)
		args = append(args, usr.PasswordHash)
	}
	if isActive != nil {
		sets = append(sets, `is_active = ?`)
		args = append(args, *isActive)
	}
	if !usr.UpdatedAt.IsZero() {
		sets = append(sets, `updated_at = ?`)
		args = append(args, usr.UpdatedAt.UTC())
	}
	if !usr.LastLogin.IsZero() {
		sets = append(sets, `last_login = ?`)
		args = append(args, usr.LastLogin.UTC())
	}
	if len(sets) == 0 {
		return repo.GetUserByID(ctx, usr.ID)
	}

	query := `UPDATE "user" SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + userColumns
	args = append(args, usr.ID)

	var row userRow
	if err := repo.exec.GetContext(ctx, &row, repo.exec.Rebind(query), args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr, usr.IsActive)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.exec.ExecContext(ctx, repo.exec.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
