package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/lecture"
)

// compile-time interface compliance check
var _ lecture.Repository = (*lectureRepository)(nil)

type lectureRow struct {
	ID          int       `db:"id"`
	ClassID     int       `db:"class_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Order       int       `db:"ord"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row lectureRow) model() lecture.Lecture {
	return lecture.Lecture{
		ID:          row.ID,
		ClassID:     row.ClassID,
		Title:       row.Title,
		Description: row.Description,
		Order:       row.Order,
		IsPublished: row.IsPublished,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type contentRow struct {
	ID        int       `db:"id"`
	LectureID int       `db:"lecture_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	URL       string    `db:"url"`
	CldPubID  string    `db:"cld_pub_id"`
	MimeType  string    `db:"mime_type"`
	SizeBytes int64     `db:"size_bytes"`
	Order     int       `db:"ord"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row contentRow) model() lecture.Content {
	return lecture.Content(row)
}

type lectureRepository struct {
	db *sqlx.DB
}

func NewLectureRepository(db *sqlx.DB) *lectureRepository {
	return &lectureRepository{db: db}
}

// Lectures

func (repo *lectureRepository) CreateLecture(lec lecture.Lecture) (lecture.Lecture, error) {
	query := repo.db.Rebind(`
		INSERT INTO lectures (class_id, title, description, ord, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.Get(&lec.ID, query,
		lec.ClassID, lec.Title, lec.Description, lec.Order, lec.IsPublished, lec.CreatedAt, lec.UpdatedAt)
	if err != nil {
		return lecture.Lecture{}, errors.Wrap(err, "inserting lecture")
	}
	return lec, nil
}

func (repo *lectureRepository) QueryLectures(filter lecture.Filter) ([]lecture.Lecture, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.ClassID != 0 {
		where = append(where, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.PublishedOnly {
		where = append(where, "is_published = TRUE")
	}

	query := "SELECT * FROM lectures"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ord, id"

	var rows []lectureRow
	if err := repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying lectures")
	}

	lecs := make([]lecture.Lecture, len(rows))
	for i, row := range rows {
		lec := row.model()
		contents, err := repo.QueryLectureContents(lec.ID)
		if err != nil {
			return nil, err
		}
		lec.Contents = contents
		lecs[i] = lec
	}
	return lecs, nil
}

func (repo *lectureRepository) GetLectureByID(id int) (lecture.Lecture, error) {
	var row lectureRow
	query := repo.db.Rebind("SELECT * FROM lectures WHERE id = ?")
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return lecture.Lecture{}, lecture.ErrNotFound
		}
		return lecture.Lecture{}, errors.Wrap(err, "getting lecture")
	}

	lec := row.model()
	contents, err := repo.QueryLectureContents(lec.ID)
	if err != nil {
		return lecture.Lecture{}, err
	}
	lec.Contents = contents
	return lec, nil
}

func (repo *lectureRepository) UpdateLecture(lec lecture.Lecture) (lecture.Lecture, error) {
	query := repo.db.Rebind(`
		UPDATE lectures SET title = ?, description = ?, ord = ?, is_published = ?, updated_at = ?
		WHERE id = ?`)
	res, err := repo.db.Exec(query, lec.Title, lec.Description, lec.Order, lec.IsPublished, lec.UpdatedAt, lec.ID)
	if err != nil {
		return lecture.Lecture{}, errors.Wrap(err, "updating lecture")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lecture.Lecture{}, lecture.ErrNotFound
	}
	return repo.GetLectureByID(lec.ID)
}

func (repo *lectureRepository) DeleteLecturesByID(ids ...int) error {
	return repo.deleteByID("lectures", ids)
}

// Contents

func (repo *lectureRepository) CreateContent(cnt lecture.Content) (lecture.Content, error) {
	query := repo.db.Rebind(`
		INSERT INTO lecture_contents (lecture_id, type, title, url, cld_pub_id, mime_type, size_bytes, ord, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.Get(&cnt.ID, query,
		cnt.LectureID, cnt.Type, cnt.Title, cnt.URL, cnt.CldPubID, cnt.MimeType,
		cnt.SizeBytes, cnt.Order, cnt.CreatedAt, cnt.UpdatedAt)
	if err != nil {
		return lecture.Content{}, errors.Wrap(err, "inserting lecture content")
	}
	return cnt, nil
}

func (repo *lectureRepository) QueryLectureContents(lectureID int) ([]lecture.Content, error) {
	var rows []contentRow
	query := repo.db.Rebind("SELECT * FROM lecture_contents WHERE lecture_id = ? ORDER BY ord, id")
	if err := repo.db.Select(&rows, query, lectureID); err != nil {
		return nil, errors.Wrap(err, "querying lecture contents")
	}
	contents := make([]lecture.Content, len(rows))
	for i, row := range rows {
		contents[i] = row.model()
	}
	return contents, nil
}

func (repo *lectureRepository) GetContentByID(id int) (lecture.Content, error) {
	var row contentRow
	query := repo.db.Rebind("SELECT * FROM lecture_contents WHERE id = ?")
	if err := repo.db.Get(&row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return lecture.Content{}, lecture.ErrContentNotFound
		}
		return lecture.Content{}, errors.Wrap(err, "getting lecture content")
	}
	return row.model(), nil
}

func (repo *lectureRepository) UpdateContent(cnt lecture.Content) (lecture.Content, error) {
	query := repo.db.Rebind("UPDATE lecture_contents SET title = ?, url = ?, ord = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.Exec(query, cnt.Title, cnt.URL, cnt.Order, cnt.UpdatedAt, cnt.ID)
	if err != nil {
		return lecture.Content{}, errors.Wrap(err, "updating lecture content")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lecture.Content{}, lecture.ErrContentNotFound
	}
	return repo.GetContentByID(cnt.ID)
}

func (repo *lectureRepository) DeleteContentsByID(ids ...int) error {
	return repo.deleteByID("lecture_contents", ids)
}

func (repo *lectureRepository) deleteByID(table string, ids []int) error {
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
