package dummydb

import (
	"sort"

	"github.com/darasahq/darasa/core/lecture"
)

type lectureRepository struct {
	lectures *lectureTable
	contents *contentTable
}

var _ lecture.Repository = (*lectureRepository)(nil) // interface compliance check

func NewLectureRepository(db *DB) lecture.Repository {
	return &lectureRepository{
		lectures: db.lecture,
		contents: db.content,
	}
}

func (repo *lectureRepository) queryLectures() []lecture.Lecture {
	lecs := make([]lecture.Lecture, 0, len(repo.lectures.table))
	for _, l := range repo.lectures.table {
		lecs = append(lecs, *l)
	}
	sort.Slice(lecs, func(i, j int) bool {
		if lecs[i].Order != lecs[j].Order {
			return lecs[i].Order < lecs[j].Order
		}
		return lecs[i].ID < lecs[j].ID
	})
	return lecs
}

// withContents attaches the lecture's contents ordered by their position.
func (repo *lectureRepository) withContents(lec lecture.Lecture) lecture.Lecture {
	repo.contents.RLock()
	defer repo.contents.RUnlock()

	lec.Contents = make([]lecture.Content, 0)
	for _, cnt := range repo.contents.table {
		if cnt.LectureID == lec.ID {
			lec.Contents = append(lec.Contents, *cnt)
		}
	}
	sort.Slice(lec.Contents, func(i, j int) bool {
		if lec.Contents[i].Order != lec.Contents[j].Order {
			return lec.Contents[i].Order < lec.Contents[j].Order
		}
		return lec.Contents[i].ID < lec.Contents[j].ID
	})
	return lec
}

func (repo *lectureRepository) CreateLecture(lec lecture.Lecture) (lecture.Lecture, error) {
	repo.lectures.Lock()
	defer repo.lectures.Unlock()

	repo.lectures.seq++
	lec.ID = repo.lectures.seq
	repo.lectures.table[lec.ID] = &lec
	return repo.withContents(lec), nil
}

func (repo *lectureRepository) QueryLectures(filter lecture.Filter) ([]lecture.Lecture, error) {
	repo.lectures.RLock()
	defer repo.lectures.RUnlock()

	matches := make([]lecture.Lecture, 0)
	for _, lec := range repo.queryLectures() {
		if filter.ClassID != 0 && lec.ClassID != filter.ClassID {
			continue
		}
		if filter.PublishedOnly && !lec.IsPublished {
			continue
		}
		matches = append(matches, repo.withContents(lec))
	}
	return matches, nil
}

func (repo *lectureRepository) GetLectureByID(id int) (lecture.Lecture, error) {
	repo.lectures.RLock()
	defer repo.lectures.RUnlock()

	if lec, ok := repo.lectures.table[id]; ok {
		return repo.withContents(*lec), nil
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}

func (repo *lectureRepository) UpdateLecture(lec lecture.Lecture) (lecture.Lecture, error) {
	repo.lectures.Lock()
	defer repo.lectures.Unlock()

	orig, ok := repo.lectures.table[lec.ID]
	if !ok {
		return lecture.Lecture{}, lecture.ErrNotFound
	}

	orig.Title = lec.Title
	orig.Description = lec.Description
	orig.Order = lec.Order
	orig.IsPublished = lec.IsPublished
	if !lec.UpdatedAt.IsZero() {
		orig.UpdatedAt = lec.UpdatedAt
	}
	return repo.withContents(*orig), nil
}

func (repo *lectureRepository) DeleteLecturesByID(ids ...int) error {
	repo.lectures.Lock()
	repo.contents.Lock()
	defer repo.lectures.Unlock()
	defer repo.contents.Unlock()

	for _, id := range ids {
		delete(repo.lectures.table, id)
		for cid, cnt := range repo.contents.table {
			if cnt.LectureID == id {
				delete(repo.contents.table, cid)
			}
		}
	}
	return nil
}

// Contents

func (repo *lectureRepository) CreateContent(cnt lecture.Content) (lecture.Content, error) {
	repo.contents.Lock()
	defer repo.contents.Unlock()

	repo.contents.seq++
	cnt.ID = repo.contents.seq
	repo.contents.table[cnt.ID] = &cnt
	return cnt, nil
}

func (repo *lectureRepository) QueryLectureContents(lectureID int) ([]lecture.Content, error) {
	lec := repo.withContents(lecture.Lecture{ID: lectureID})
	return lec.Contents, nil
}

func (repo *lectureRepository) GetContentByID(id int) (lecture.Content, error) {
	repo.contents.RLock()
	defer repo.contents.RUnlock()

	if cnt, ok := repo.contents.table[id]; ok {
		return *cnt, nil
	}
	return lecture.Content{}, lecture.ErrContentNotFound
}

func (repo *lectureRepository) UpdateContent(cnt lecture.Content) (lecture.Content, error) {
	repo.contents.Lock()
	defer repo.contents.Unlock()

	orig, ok := repo.contents.table[cnt.ID]
	if !ok {
		return lecture.Content{}, lecture.ErrContentNotFound
	}

	orig.Title = cnt.Title
	orig.URL = cnt.URL
	orig.Order = cnt.Order
	if !cnt.UpdatedAt.IsZero() {
		orig.UpdatedAt = cnt.UpdatedAt
	}
	return *orig, nil
}

func (repo *lectureRepository) DeleteContentsByID(ids ...int) error {
	repo.contents.Lock()
	defer repo.contents.Unlock()

	for _, id := range ids {
		delete(repo.contents.table, id)
	}
	return nil
}
