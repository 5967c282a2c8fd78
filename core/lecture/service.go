package lecture

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("lecture not found")
	ErrContentNotFound = errors.New("lecture content not found")
)

type (
	Repository interface {
		CreateLecture(lec Lecture) (Lecture, error)
		QueryLectures(filter Filter) ([]Lecture, error)
		GetLectureByID(id int) (Lecture, error)
		UpdateLecture(lec Lecture) (Lecture, error)
		DeleteLecturesByID(ids ...int) error

		CreateContent(cnt Content) (Content, error)
		QueryLectureContents(lectureID int) ([]Content, error)
		GetContentByID(id int) (Content, error)
		UpdateContent(cnt Content) (Content, error)
		DeleteContentsByID(ids ...int) error
	}

	// ServiceInterface is the lecture Service surface consumed by the API.
	ServiceInterface interface {
		Create(nl NewLecture) (Lecture, error)
		Query(filter Filter) ([]Lecture, error)
		GetByID(id int) (Lecture, error)
		Update(id int, ul UpdateLecture) (Lecture, error)
		Delete(ids ...int) error

		AddContent(lectureID int, nc NewContent) (Content, error)
		GetContentByID(id int) (Content, error)
		UpdateContent(id int, uc UpdateContent) (Content, error)
		DeleteContents(ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nl NewLecture) (Lecture, error) {
	now := time.Now().UTC()
	lec := Lecture{
		ClassID:     nl.ClassID,
		Title:       nl.Title,
		Description: nl.Description,
		Order:       nl.Order,
		IsPublished: nl.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	lec, err := svc.repo.CreateLecture(lec)
	if err != nil {
		return Lecture{}, err
	}
	lec.RefreshCounts()
	return lec, nil
}

func (svc *Service) Query(filter Filter) ([]Lecture, error) {
	lecs, err := svc.repo.QueryLectures(filter)
	if err != nil {
		return nil, err
	}
	for i := range lecs {
		lecs[i].RefreshCounts()
	}
	return lecs, nil
}

func (svc *Service) GetByID(id int) (Lecture, error) {
	lec, err := svc.repo.GetLectureByID(id)
	if err != nil {
		return Lecture{}, err
	}
	lec.RefreshCounts()
	return lec, nil
}

func (svc *Service) Update(id int, ul UpdateLecture) (Lecture, error) {
	orig, err := svc.repo.GetLectureByID(id)
	if err != nil {
		return Lecture{}, err
	}

	orig.Title = ul.Title
	if ul.Description != "" {
		orig.Description = ul.Description
	}
	if ul.Order != nil {
		orig.Order = *ul.Order
	}
	if ul.IsPublished != nil {
		orig.IsPublished = *ul.IsPublished
	}
	orig.UpdatedAt = time.Now().UTC()

	lec, err := svc.repo.UpdateLecture(orig)
	if err != nil {
		return Lecture{}, err
	}
	lec.RefreshCounts()
	return lec, nil
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteLecturesByID(ids...)
}

func (svc *Service) AddContent(lectureID int, nc NewContent) (Content, error) {
	if _, err := svc.repo.GetLectureByID(lectureID); err != nil {
		return Content{}, err
	}
	now := time.Now().UTC()
	cnt := Content{
		LectureID: lectureID,
		Type:      nc.Type,
		Title:     nc.Title,
		URL:       nc.URL,
		CldPubID:  nc.CldPubID,
		MimeType:  nc.MimeType,
		SizeBytes: nc.SizeBytes,
		Order:     nc.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateContent(cnt)
}

func (svc *Service) GetContentByID(id int) (Content, error) {
	return svc.repo.GetContentByID(id)
}

func (svc *Service) UpdateContent(id int, uc UpdateContent) (Content, error) {
	orig, err := svc.repo.GetContentByID(id)
	if err != nil {
		return Content{}, err
	}

	orig.Title = uc.Title
	orig.URL = uc.URL
	if uc.Order != nil {
		orig.Order = *uc.Order
	}
	orig.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateContent(orig)
}

func (svc *Service) DeleteContents(ids ...int) error {
	return svc.repo.DeleteContentsByID(ids...)
}
