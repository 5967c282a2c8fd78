package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

type Department struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Subject struct {
	ID           int       `json:"id"`
	DepartmentID int       `json:"department_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	Code        string `json:"code" validate:"required,max=16"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nd.Code = core.CleanString(nd.Code, true /* lower */)
	nd.Name = core.CleanString(nd.Name)

	if err := validate.Struct(nd); err != nil {
		return err
	}
	return svc.CheckDepartmentCode(nd.Code)
}

// UpdateDepartment defines what information may be provided to modify an existing Department.
type UpdateDepartment struct {
	Code        string `json:"code" validate:"omitempty,max=16"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ud *UpdateDepartment) Validate(orig Department, validate *validator.Validate, svc ServiceInterface) error {
	code := core.CleanString(ud.Code, true /* lower */)
	if code != "" {
		ud.Code = code
	} else {
		ud.Code = orig.Code
	}

	name := core.CleanString(ud.Name)
	if name != "" {
		ud.Name = name
	} else {
		ud.Name = orig.Name
	}

	if err := validate.Struct(ud); err != nil {
		return err
	}
	return svc.CheckDepartmentCode(ud.Code, orig)
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	DepartmentID int    `json:"department_id" validate:"required"`
	Code         string `json:"code" validate:"required,max=16"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
}

func (ns *NewSubject) Validate(validate *validator.Validate, svc ServiceInterface) error {
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.Name = core.CleanString(ns.Name)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if _, err := svc.GetDepartmentByID(ns.DepartmentID); err != nil {
		if err == ErrDepartmentNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
		}
		return err
	}
	return svc.CheckSubjectCode(ns.Code)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	DepartmentID int    `json:"department_id"`
	Code         string `json:"code" validate:"omitempty,max=16"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

func (us *UpdateSubject) Validate(orig Subject, validate *validator.Validate, svc ServiceInterface) error {
	code := core.CleanString(us.Code, true /* lower */)
	if code != "" {
		us.Code = code
	} else {
		us.Code = orig.Code
	}

	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	if us.DepartmentID == 0 {
		us.DepartmentID = orig.DepartmentID
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	if _, err := svc.GetDepartmentByID(us.DepartmentID); err != nil {
		if err == ErrDepartmentNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
		}
		return err
	}
	return svc.CheckSubjectCode(us.Code, orig)
}

type SubjectFilter struct {
	Search       string `query:"search"`
	DepartmentID int    `query:"department_id"`
}

func (sf *SubjectFilter) IsEmpty() bool {
	return sf.Search == "" && sf.DepartmentID == 0
}

func (sf *SubjectFilter) Clean() {
	sf.Search = core.CleanString(sf.Search)
}
