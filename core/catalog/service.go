package catalog

import (
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var (
	// errors
	ErrDepartmentNotFound = errors.New("department not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrDeptCodeExists     = errors.New("a department with this code already exists")
	ErrSubjectCodeExists  = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CheckDepartmentCodeUniqueness(code string, excluded ...Department) error
		CreateDepartment(dept Department) (Department, error)
		QueryAllDepartments() ([]Department, error)
		GetDepartmentByID(id int) (Department, error)
		UpdateDepartment(dept Department) (Department, error)
		DeleteDepartmentsByID(ids ...int) error

		CheckSubjectCodeUniqueness(code string, excluded ...Subject) error
		CreateSubject(sub Subject) (Subject, error)
		QueryAllSubjects() ([]Subject, error)
		// FilterSubjects applies AND operation on available SubjectFilter fields.
		// SubjectFilter.Search does a case-insensitive match on Subject.Name or Subject.Code.
		FilterSubjects(filter SubjectFilter) ([]Subject, error)
		GetSubjectByID(id int) (Subject, error)
		UpdateSubject(sub Subject) (Subject, error)
		DeleteSubjectsByID(ids ...int) error
	}

	// ServiceInterface is the catalog Service surface consumed by the API.
	ServiceInterface interface {
		CheckDepartmentCode(code string, excluded ...Department) error
		CreateDepartment(nd NewDepartment) (Department, error)
		QueryDepartments() ([]Department, error)
		GetDepartmentByID(id int) (Department, error)
		UpdateDepartment(id int, ud UpdateDepartment) (Department, error)
		DeleteDepartments(ids ...int) error

		CheckSubjectCode(code string, excluded ...Subject) error
		CreateSubject(ns NewSubject) (Subject, error)
		QuerySubjects(filter *SubjectFilter) ([]Subject, error)
		GetSubjectByID(id int) (Subject, error)
		UpdateSubject(id int, us UpdateSubject) (Subject, error)
		DeleteSubjects(ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckDepartmentCode(code string, excluded ...Department) error {
	if err := svc.repo.CheckDepartmentCodeUniqueness(code, excluded...); err != nil {
		if err == ErrDeptCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateDepartment(nd NewDepartment) (Department, error) {
	now := time.Now().UTC()
	dept := Department{
		Code:        nd.Code,
		Name:        nd.Name,
		Description: nd.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateDepartment(dept)
}

func (svc *Service) QueryDepartments() ([]Department, error) {
	return svc.repo.QueryAllDepartments()
}

func (svc *Service) GetDepartmentByID(id int) (Department, error) {
	return svc.repo.GetDepartmentByID(id)
}

func (svc *Service) UpdateDepartment(id int, ud UpdateDepartment) (Department, error) {
	dept := Department{
		ID:          id,
		Code:        ud.Code,
		Name:        ud.Name,
		Description: ud.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateDepartment(dept)
}

func (svc *Service) DeleteDepartments(ids ...int) error {
	return svc.repo.DeleteDepartmentsByID(ids...)
}

func (svc *Service) CheckSubjectCode(code string, excluded ...Subject) error {
	if err := svc.repo.CheckSubjectCodeUniqueness(code, excluded...); err != nil {
		if err == ErrSubjectCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateSubject(ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		DepartmentID: ns.DepartmentID,
		Code:         ns.Code,
		Name:         ns.Name,
		Description:  ns.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateSubject(sub)
}

func (svc *Service) QuerySubjects(filter *SubjectFilter) ([]Subject, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllSubjects()
	}
	return svc.repo.FilterSubjects(*filter)
}

func (svc *Service) GetSubjectByID(id int) (Subject, error) {
	return svc.repo.GetSubjectByID(id)
}

func (svc *Service) UpdateSubject(id int, us UpdateSubject) (Subject, error) {
	sub := Subject{
		ID:           id,
		DepartmentID: us.DepartmentID,
		Code:         us.Code,
		Name:         us.Name,
		Description:  us.Description,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateSubject(sub)
}

func (svc *Service) DeleteSubjects(ids ...int) error {
	return svc.repo.DeleteSubjectsByID(ids...)
}
