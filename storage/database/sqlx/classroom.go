package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/classroom"
)

// compile-time interface compliance check
var _ classroom.Repository = (*classroomRepository)(nil)

type classRow struct {
	ID             int             `db:"id"`
	SubjectID      int             `db:"subject_id"`
	TeacherID      string          `db:"teacher_id"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	Capacity       int             `db:"capacity"`
	Status         string          `db:"status"`
	BannerURL      string          `db:"banner_url"`
	BannerCldPubID string          `db:"banner_cld_pub_id"`
	InviteCode     string          `db:"invite_code"`
	Schedules      json.RawMessage `db:"schedules"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (row classRow) model() (classroom.Class, error) {
	cls := classroom.Class{
		ID:             row.ID,
		SubjectID:      row.SubjectID,
		TeacherID:      row.TeacherID,
		Name:           row.Name,
		Description:    row.Description,
		Capacity:       row.Capacity,
		Status:         row.Status,
		BannerURL:      row.BannerURL,
		BannerCldPubID: row.BannerCldPubID,
		InviteCode:     row.InviteCode,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if len(row.Schedules) > 0 {
		if err := json.Unmarshal(row.Schedules, &cls.Schedules); err != nil {
			return classroom.Class{}, errors.Wrap(err, "decoding class schedules")
		}
	}
	return cls, nil
}

type enrollmentRow struct {
	ID        int       `db:"id"`
	ClassID   int       `db:"class_id"`
	StudentID string    `db:"student_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (row enrollmentRow) model() classroom.Enrollment {
	return classroom.Enrollment(row)
}

type classroomRepository struct {
	db *sqlx.DB
}

func NewClassroomRepository(db *sqlx.DB) *classroomRepository {
	return &classroomRepository{db: db}
}

// Classes

func (repo *classroomRepository) CreateClass(cls classroom.Class) (classroom.Class, error) {
	schedules, err := json.Marshal(cls.Schedules)
	if err != nil {
		return classroom.Class{}, errors.Wrap(err, "encoding class schedules")
	}
	query := repo.db.Rebind(`
		INSERT INTO classes (subject_id, teacher_id, name, description, capacity, status,
		                     banner_url, banner_cld_pub_id, invite_code, schedules, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err = repo.db.Get(&cls.ID, query,
		cls.SubjectID, cls.TeacherID, cls.Name, cls.Description, cls.Capacity, cls.Status,
		cls.BannerURL, cls.BannerCldPubID, cls.InviteCode, schedules, cls.CreatedAt, cls.UpdatedAt,
	)
	if err != nil {
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classroomRepository) QueryAllClasses() ([]classroom.Class, error) {
	return repo.selectClasses("SELECT * FROM classes ORDER BY created_at")
}

func (repo *classroomRepository) FilterClasses(filter classroom.ClassFilter) ([]classroom.Class, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter.Search != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.SubjectID != 0 {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		where = append(where, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.StudentID != "" {
		where = append(where, "id IN (SELECT class_id FROM enrollments WHERE student_id = ?)")
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := "SELECT * FROM classes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"
	return repo.selectClasses(query, args...)
}

func (repo *classroomRepository) selectClasses(query string, args ...interface{}) ([]classroom.Class, error) {
	var rows []classRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]classroom.Class, len(rows))
	for i, row := range rows {
		cls, err := row.model()
		if err != nil {
			return nil, err
		}
		classes[i] = cls
	}
	return classes, nil
}

func (repo *classroomRepository) GetClassByID(id int) (classroom.Class, error) {
	return repo.getClass("id = ?", id)
}

func (repo *classroomRepository) GetClassByInviteCode(code string) (classroom.Class, error) {
	return repo.getClass("invite_code = ?", code)
}

func (repo *classroomRepository) getClass(cond string, arg interface{}) (classroom.Class, error) {
	var row classRow
	query := repo.db.Rebind("SELECT * FROM classes WHERE " + cond)
	if err := repo.db.Get(&row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Class{}, classroom.ErrClassNotFound
		}
		return classroom.Class{}, errors.Wrap(err, "getting class")
	}
	return row.model()
}

func (repo *classroomRepository) UpdateClass(cls classroom.Class) (classroom.Class, error) {
	set := make([]string, 0, 9)
	args := make([]interface{}, 0, 9)

	if cls.SubjectID != 0 {
		set = append(set, "subject_id = ?")
		args = append(args, cls.SubjectID)
	}
	if cls.Name != "" {
		set = append(set, "name = ?")
		args = append(args, cls.Name)
	}
	if cls.Description != "" {
		set = append(set, "description = ?")
		args = append(args, cls.Description)
	}
	if cls.Capacity != 0 {
		set = append(set, "capacity = ?")
		args = append(args, cls.Capacity)
	}
	if cls.Status != "" {
		set = append(set, "status = ?")
		args = append(args, cls.Status)
	}
	if cls.BannerURL != "" {
		set = append(set, "banner_url = ?", "banner_cld_pub_id = ?")
		args = append(args, cls.BannerURL, cls.BannerCldPubID)
	}
	if cls.InviteCode != "" {
		set = append(set, "invite_code = ?")
		args = append(args, cls.InviteCode)
	}
	if cls.Schedules != nil {
		schedules, err := json.Marshal(cls.Schedules)
		if err != nil {
			return classroom.Class{}, errors.Wrap(err, "encoding class schedules")
		}
		set = append(set, "schedules = ?")
		args = append(args, schedules)
	}
	if !cls.UpdatedAt.IsZero() {
		set = append(set, "updated_at = ?")
		args = append(args, cls.UpdatedAt)
	}

	if len(set) > 0 {
		query := fmt.Sprintf("UPDATE classes SET %s WHERE id = ?", strings.Join(set, ", "))
		args = append(args, cls.ID)
		res, err := repo.db.Exec(repo.db.Rebind(query), args...)
		if err != nil {
			return classroom.Class{}, errors.Wrap(err, "updating class")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return classroom.Class{}, classroom.ErrClassNotFound
		}
	}
	return repo.GetClassByID(cls.ID)
}

func (repo *classroomRepository) DeleteClassesByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM classes WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding id list")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return nil
}

// Enrollments

func (repo *classroomRepository) CreateEnrollment(enr classroom.Enrollment) (classroom.Enrollment, error) {
	query := repo.db.Rebind(`
		INSERT INTO enrollments (class_id, student_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id`)
	if err := repo.db.Get(&enr.ID, query, enr.ClassID, enr.StudentID, enr.CreatedAt); err != nil {
		return classroom.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *classroomRepository) QueryEnrollments(filter classroom.EnrollmentFilter) ([]classroom.Enrollment, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.ClassID != 0 {
		where = append(where, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}

	query := "SELECT * FROM enrollments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	var rows []enrollmentRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]classroom.Enrollment, len(rows))
	for i, row := range rows {
		enrs[i] = row.model()
	}
	return enrs, nil
}

func (repo *classroomRepository) GetEnrollmentByID(id int) (classroom.Enrollment, error) {
	var row enrollmentRow
	query := repo.db.Rebind("SELECT * FROM enrollments WHERE id = ?")
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.Enrollment{}, classroom.ErrEnrollmentNotFound
		}
		return classroom.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.model(), nil
}

func (repo *classroomRepository) CountClassEnrollments(classID int) (int, error) {
	var count int
	query := repo.db.Rebind("SELECT COUNT(*) FROM enrollments WHERE class_id = ?")
	if err := repo.db.Get(&count, query, classID); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}

func (repo *classroomRepository) EnrollmentExists(classID int, studentID string) (bool, error) {
	var count int
	query := repo.db.Rebind("SELECT COUNT(*) FROM enrollments WHERE class_id = ? AND student_id = ?")
	if err := repo.db.Get(&count, query, classID, studentID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return count > 0, nil
}

func (repo *classroomRepository) DeleteEnrollmentsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM enrollments WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding id list")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting enrollments")
	}
	return nil
}
