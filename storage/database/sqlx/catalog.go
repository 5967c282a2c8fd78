package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/catalog"
)

// compile-time interface compliance check
var _ catalog.Repository = (*catalogRepository)(nil)

type departmentRow struct {
	ID          int       `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row departmentRow) model() catalog.Department {
	return catalog.Department{
		ID:          row.ID,
		Code:        row.Code,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type subjectRow struct {
	ID           int       `db:"id"`
	Code         string    `db:"code"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	DepartmentID int       `db:"department_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row subjectRow) model() catalog.Subject {
	return catalog.Subject{
		ID:           row.ID,
		Code:         row.Code,
		Name:         row.Name,
		Description:  row.Description,
		DepartmentID: row.DepartmentID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Departments

func (repo *catalogRepository) CheckDepartmentCodeUniqueness(code string, excluded ...catalog.Department) error {
	ids := make([]int, 0, len(excluded))
	for _, dept := range excluded {
		ids = append(ids, dept.ID)
	}
	taken, err := repo.codeTaken("departments", code, ids)
	if err != nil {
		return err
	}
	if taken {
		return catalog.ErrDeptCodeExists
	}
	return nil
}

func (repo *catalogRepository) CreateDepartment(dept catalog.Department) (catalog.Department, error) {
	query := repo.db.Rebind(`
		INSERT INTO departments (code, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.Get(&dept.ID, query, dept.Code, dept.Name, dept.Description, dept.CreatedAt, dept.UpdatedAt)
	if err != nil {
		return catalog.Department{}, errors.Wrap(err, "inserting department")
	}
	return dept, nil
}

func (repo *catalogRepository) QueryAllDepartments() ([]catalog.Department, error) {
	var rows []departmentRow
	if err := repo.db.Select(&rows, "SELECT * FROM departments ORDER BY code"); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	depts := make([]catalog.Department, len(rows))
	for i, row := range rows {
		depts[i] = row.model()
	}
	return depts, nil
}

func (repo *catalogRepository) GetDepartmentByID(id int) (catalog.Department, error) {
	var row departmentRow
	query := repo.db.Rebind("SELECT * FROM departments WHERE id = ?")
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Department{}, catalog.ErrDepartmentNotFound
		}
		return catalog.Department{}, errors.Wrap(err, "getting department")
	}
	return row.model(), nil
}

func (repo *catalogRepository) UpdateDepartment(dept catalog.Department) (catalog.Department, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if dept.Code != "" {
		set = append(set, "code = ?")
		args = append(args, dept.Code)
	}
	if dept.Name != "" {
		set = append(set, "name = ?")
		args = append(args, dept.Name)
	}
	if dept.Description != "" {
		set = append(set, "description = ?")
		args = append(args, dept.Description)
	}
	if !dept.UpdatedAt.IsZero() {
		set = append(set, "updated_at = ?")
		args = append(args, dept.UpdatedAt)
	}

	if len(set) > 0 {
		query := fmt.Sprintf("UPDATE departments SET %s WHERE id = ?", strings.Join(set, ", "))
		args = append(args, dept.ID)
		res, err := repo.db.Exec(repo.db.Rebind(query), args...)
		if err != nil {
			return catalog.Department{}, errors.Wrap(err, "updating department")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return catalog.Department{}, catalog.ErrDepartmentNotFound
		}
	}
	return repo.GetDepartmentByID(dept.ID)
}

func (repo *catalogRepository) DeleteDepartmentsByID(ids ...int) error {
	return repo.deleteByID("departments", ids)
}

// Subjects

func (repo *catalogRepository) CheckSubjectCodeUniqueness(code string, excluded ...catalog.Subject) error {
	ids := make([]int, 0, len(excluded))
	for _, sub := range excluded {
		ids = append(ids, sub.ID)
	}
	taken, err := repo.codeTaken("subjects", code, ids)
	if err != nil {
		return err
	}
	if taken {
		return catalog.ErrSubjectCodeExists
	}
	return nil
}

func (repo *catalogRepository) CreateSubject(sub catalog.Subject) (catalog.Subject, error) {
	query := repo.db.Rebind(`
		INSERT INTO subjects (code, name, description, department_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.Get(&sub.ID, query, sub.Code, sub.Name, sub.Description, sub.DepartmentID, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *catalogRepository) QueryAllSubjects() ([]catalog.Subject, error) {
	return repo.selectSubjects("SELECT * FROM subjects ORDER BY code")
}

func (repo *catalogRepository) FilterSubjects(filter catalog.SubjectFilter) ([]catalog.Subject, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)")
		term := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, term, term)
	}
	if filter.DepartmentID != 0 {
		where = append(where, "department_id = ?")
		args = append(args, filter.DepartmentID)
	}

	query := "SELECT * FROM subjects"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY code"
	return repo.selectSubjects(query, args...)
}

func (repo *catalogRepository) selectSubjects(query string, args ...interface{}) ([]catalog.Subject, error) {
	var rows []subjectRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]catalog.Subject, len(rows))
	for i, row := range rows {
		subs[i] = row.model()
	}
	return subs, nil
}

func (repo *catalogRepository) GetSubjectByID(id int) (catalog.Subject, error) {
	var row subjectRow
	query := repo.db.Rebind("SELECT * FROM subjects WHERE id = ?")
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Subject{}, catalog.ErrSubjectNotFound
		}
		return catalog.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.model(), nil
}

func (repo *catalogRepository) UpdateSubject(sub catalog.Subject) (catalog.Subject, error) {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if sub.Code != "" {
		set = append(set, "code = ?")
		args = append(args, sub.Code)
	}
	if sub.Name != "" {
		set = append(set, "name = ?")
		args = append(args, sub.Name)
	}
	if sub.Description != "" {
		set = append(set, "description = ?")
		args = append(args, sub.Description)
	}
	if sub.DepartmentID != 0 {
		set = append(set, "department_id = ?")
		args = append(args, sub.DepartmentID)
	}
	if !sub.UpdatedAt.IsZero() {
		set = append(set, "updated_at = ?")
		args = append(args, sub.UpdatedAt)
	}

	if len(set) > 0 {
		query := fmt.Sprintf("UPDATE subjects SET %s WHERE id = ?", strings.Join(set, ", "))
		args = append(args, sub.ID)
		res, err := repo.db.Exec(repo.db.Rebind(query), args...)
		if err != nil {
			return catalog.Subject{}, errors.Wrap(err, "updating subject")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return catalog.Subject{}, catalog.ErrSubjectNotFound
		}
	}
	return repo.GetSubjectByID(sub.ID)
}

func (repo *catalogRepository) DeleteSubjectsByID(ids ...int) error {
	return repo.deleteByID("subjects", ids)
}

func (repo *catalogRepository) codeTaken(table, code string, excludedIDs []int) (bool, error) {
	query := "SELECT COUNT(*) FROM " + table + " WHERE code = ?"
	args := []interface{}{code}
	if len(excludedIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query+" AND id NOT IN (?)", code, excludedIDs)
		if err != nil {
			return false, errors.Wrap(err, "expanding exclusion list")
		}
	}

	var count int
	if err := repo.db.Get(&count, repo.db.Rebind(query), args...); err != nil {
		return false, errors.Wrap(err, "checking code uniqueness")
	}
	return count > 0, nil
}

func (repo *catalogRepository) deleteByID(table string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding id list")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	return nil
}
