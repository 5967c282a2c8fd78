package classroom

import (
	"reflect"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

// Class statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Schedule struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm,hhmm_gt=StartTime"`
}

type Class struct {
	ID             int        `json:"id"`
	SubjectID      int        `json:"subject_id"`
	TeacherID      string     `json:"teacher_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Capacity       int        `json:"capacity"`
	Status         string     `json:"status"`
	BannerURL      string     `json:"banner_url,omitempty"`
	BannerCldPubID string     `json:"banner_cld_pub_id,omitempty"`
	InviteCode     string     `json:"invite_code,omitempty"`
	Schedules      []Schedule `json:"schedules"`
	CreatedAt      time.Time  `json:"created_at"` // UTC
	UpdatedAt      time.Time  `json:"updated_at"` // UTC
}

func (c *Class) IsActive() bool { return c.Status == StatusActive }

type Enrollment struct {
	ID        int       `json:"id"`
	ClassID   int       `json:"class_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	SubjectID      int        `json:"subject_id" validate:"required"`
	Name           string     `json:"name" validate:"required"`
	Description    string     `json:"description"`
	Capacity       int        `json:"capacity" validate:"required,min=1,max=500"`
	Status         string     `json:"status" validate:"omitempty,oneof=active inactive"`
	BannerURL      string     `json:"banner_url" validate:"omitempty,url"`
	BannerCldPubID string     `json:"banner_cld_pub_id"`
	Schedules      []Schedule `json:"schedules" validate:"omitempty,dive"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	if nc.Status == "" {
		nc.Status = StatusActive
	}
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	SubjectID      int        `json:"subject_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Capacity       int        `json:"capacity" validate:"omitempty,min=1,max=500"`
	Status         string     `json:"status" validate:"omitempty,oneof=active inactive"`
	BannerURL      string     `json:"banner_url" validate:"omitempty,url"`
	BannerCldPubID string     `json:"banner_cld_pub_id"`
	Schedules      []Schedule `json:"schedules" validate:"omitempty,dive"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}

	if uc.SubjectID == 0 {
		uc.SubjectID = orig.SubjectID
	}
	if uc.Capacity == 0 {
		uc.Capacity = orig.Capacity
	}
	if uc.Status == "" {
		uc.Status = orig.Status
	}
	if uc.Schedules == nil {
		uc.Schedules = orig.Schedules
	}

	return validate.Struct(uc)
}

// NewEnrollment contains information needed to enroll a student directly
// (admin/teacher flow; students join with an invite code instead).
type NewEnrollment struct {
	ClassID   int    `json:"class_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

// JoinClass is the invite-code join payload.
type JoinClass struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

func (jc *JoinClass) Validate(validate *validator.Validate) error {
	jc.InviteCode = core.CleanString(jc.InviteCode, true /* lower */)
	return validate.Struct(jc)
}

type ClassFilter struct {
	Search    string `query:"search"`
	SubjectID int    `query:"subject_id"`
	TeacherID string `query:"teacher_id"`
	// StudentID narrows to classes the student is enrolled in.
	StudentID string `query:"-"`
	Status    string `query:"status"`
}

func (cf *ClassFilter) IsEmpty() bool {
	return cf.Search == "" && cf.SubjectID == 0 && cf.TeacherID == "" && cf.StudentID == "" && cf.Status == ""
}

func (cf *ClassFilter) Clean() {
	cf.Search = core.CleanString(cf.Search)
}

type EnrollmentFilter struct {
	ClassID   int    `query:"class_id"`
	StudentID string `query:"student_id"`
}

func (ef *EnrollmentFilter) IsEmpty() bool {
	return ef.ClassID == 0 && ef.StudentID == ""
}

// hhmmValidation backs the custom `hhmm` validate tag (24h "15:04" times).
func hhmmValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

// hhmmGtValidation backs the custom `hhmm_gt` validate tag: the field must be
// an HH:MM time strictly later than the HH:MM field named by the tag param.
func hhmmGtValidation(fl validator.FieldLevel) bool {
	end, err := time.Parse("15:04", fl.Field().String())
	if err != nil {
		return false
	}
	startFld, kind, ok := fl.GetStructFieldOK()
	if !ok || kind != reflect.String {
		return false
	}
	start, err := time.Parse("15:04", startFld.String())
	if err != nil {
		return false
	}
	return end.After(start)
}

// RegisterValidators registers this package's custom validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation("hhmm", hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, "hhmm", "must be a 24h time in HH:MM format")
	_ = validate.RegisterValidation("hhmm_gt", hhmmGtValidation)
	core.RegisterCustomTranslation(validate, translator, "hhmm_gt", "must be later than the start time")
}
