package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/user"
)

// compile-time interface compliance check
var _ user.Repository = (*userRepository)(nil)

type userRow struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Role          string     `db:"role"`
	IsActive      bool       `db:"is_active"`
	Department    string     `db:"department"`
	Image         string     `db:"image"`
	ImageCldPubID string     `db:"image_cld_pub_id"`
	PasswordHash  null.Bytes `db:"password_hash"`
	CreatedAt     null.Time  `db:"created_at"`
	UpdatedAt     null.Time  `db:"updated_at"`
	LastLogin     null.Time  `db:"last_login"`
}

func (row userRow) model() user.User {
	return user.User{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Role:          access.Role(row.Role),
		IsActive:      row.IsActive,
		Department:    row.Department,
		Image:         row.Image,
		ImageCldPubID: row.ImageCldPubID,
		PasswordHash:  row.PasswordHash.Bytes,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
		LastLogin:     row.LastLogin.Time,
	}
}

const userColumns = "id, name, email, role, is_active, department, image, image_cld_pub_id, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	query := "SELECT COUNT(*) FROM users WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		var err error
		query, args, err = sqlx.In(query+" AND id NOT IN (?)", email, ids)
		if err != nil {
			return errors.Wrap(err, "expanding exclusion list")
		}
	}

	var count int
	if err := repo.db.Get(&count, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	query := repo.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.Exec(query,
		usr.ID, usr.Name, usr.Email, string(usr.Role), usr.IsActive, usr.Department,
		usr.Image, usr.ImageCldPubID, null.BytesFrom(usr.PasswordHash),
		usr.CreatedAt, usr.UpdatedAt, null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	query := "SELECT " + userColumns + " FROM users ORDER BY created_at"
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return userModels(rows), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getUser("id", id)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getUser("email", email)
}

func (repo *userRepository) getUser(column, value string) (user.User, error) {
	var row userRow
	query := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")
	if err := repo.db.Get(&row, query, value); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.model(), nil
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		term := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, term, term)
	}
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, string(filter.Role))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, filter.CreatedTo)
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"

	var rows []userRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return userModels(rows), nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	if usr.Name != "" {
		set = append(set, "name = ?")
		args = append(args, usr.Name)
	}
	if usr.Email != "" {
		set = append(set, "email = ?")
		args = append(args, usr.Email)
	}
	if usr.Role != "" {
		set = append(set, "role = ?")
		args = append(args, string(usr.Role))
	}
	if usr.Department != "" {
		set = append(set, "department = ?")
		args = append(args, usr.Department)
	}
	if usr.Image != "" {
		set = append(set, "image = ?", "image_cld_pub_id = ?")
		args = append(args, usr.Image, usr.ImageCldPubID)
	}
	if usr.PasswordHash != nil {
		set = append(set, "password_hash = ?")
		args = append(args, null.BytesFrom(usr.PasswordHash))
	}
	if !usr.LastLogin.IsZero() {
		set = append(set, "last_login = ?")
		args = append(args, usr.LastLogin)
	}
	if !usr.UpdatedAt.IsZero() {
		set = append(set, "updated_at = ?")
		args = append(args, usr.UpdatedAt)
	}
	if isActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *isActive)
	}

	if len(set) > 0 {
		query := fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(set, ", "))
		args = append(args, usr.ID)
		res, err := repo.db.Exec(repo.db.Rebind(query), args...)
		if err != nil {
			return user.User{}, errors.Wrap(err, "updating user")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return user.User{}, user.ErrNotFound
		}
	}
	return repo.GetUserByID(usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding id list")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func userModels(rows []userRow) []user.User {
	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.model()
	}
	return users
}
