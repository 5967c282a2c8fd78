package classroom

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/user"
)

var (
	// errors
	ErrClassNotFound      = errors.New("class not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrClassInactive      = errors.New("this class is not accepting enrollments")
	ErrClassFull          = errors.New("this class is full")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this class")
)

type (
	Repository interface {
		CreateClass(cls Class) (Class, error)
		QueryAllClasses() ([]Class, error)
		// FilterClasses applies AND operation on available ClassFilter fields.
		// ClassFilter.Search does a case-insensitive match on Class.Name.
		FilterClasses(filter ClassFilter) ([]Class, error)
		GetClassByID(id int) (Class, error)
		GetClassByInviteCode(code string) (Class, error)
		UpdateClass(cls Class) (Class, error)
		DeleteClassesByID(ids ...int) error

		CreateEnrollment(enr Enrollment) (Enrollment, error)
		QueryEnrollments(filter EnrollmentFilter) ([]Enrollment, error)
		GetEnrollmentByID(id int) (Enrollment, error)
		CountClassEnrollments(classID int) (int, error)
		EnrollmentExists(classID int, studentID string) (bool, error)
		DeleteEnrollmentsByID(ids ...int) error
	}

	// ServiceInterface is the classroom Service surface consumed by the API and CLI.
	ServiceInterface interface {
		CreateClass(nc NewClass, teacherID string) (Class, error)
		QueryClasses(filter *ClassFilter) ([]Class, error)
		ClassesFor(p *access.Principal) ([]Class, error)
		GetClassByID(id int) (Class, error)
		UpdateClass(id int, uc UpdateClass) (Class, error)
		RegenerateInviteCode(id int) (Class, error)
		DeleteClasses(ids ...int) error
		AccessRecord(classID int) (*access.Record, error)

		Enroll(ne NewEnrollment) (Enrollment, error)
		JoinByInviteCode(code string, student user.User) (Enrollment, error)
		QueryEnrollments(filter EnrollmentFilter) ([]Enrollment, error)
		GetEnrollmentByID(id int) (Enrollment, error)
		DeleteEnrollments(ids ...int) error
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
	}
}

// NewInviteCode derives a short shareable code from a fresh UUID.
func NewInviteCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

func (svc *Service) CreateClass(nc NewClass, teacherID string) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		SubjectID:      nc.SubjectID,
		TeacherID:      teacherID,
		Name:           nc.Name,
		Description:    nc.Description,
		Capacity:       nc.Capacity,
		Status:         nc.Status,
		BannerURL:      nc.BannerURL,
		BannerCldPubID: nc.BannerCldPubID,
		InviteCode:     NewInviteCode(),
		Schedules:      nc.Schedules,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateClass(cls)
}

func (svc *Service) QueryClasses(filter *ClassFilter) ([]Class, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllClasses()
	}
	return svc.repo.FilterClasses(*filter)
}

// ClassesFor narrows the class list to what the principal may see:
// admins see everything, teachers their own classes, students the classes
// they are enrolled in.
func (svc *Service) ClassesFor(p *access.Principal) ([]Class, error) {
	switch {
	case p.IsAdmin():
		return svc.repo.QueryAllClasses()
	case p.IsTeacher():
		return svc.repo.FilterClasses(ClassFilter{TeacherID: p.ID})
	default:
		return svc.repo.FilterClasses(ClassFilter{StudentID: p.ID})
	}
}

func (svc *Service) GetClassByID(id int) (Class, error) {
	return svc.repo.GetClassByID(id)
}

func (svc *Service) UpdateClass(id int, uc UpdateClass) (Class, error) {
	cls := Class{
		ID:             id,
		SubjectID:      uc.SubjectID,
		Name:           uc.Name,
		Description:    uc.Description,
		Capacity:       uc.Capacity,
		Status:         uc.Status,
		BannerURL:      uc.BannerURL,
		BannerCldPubID: uc.BannerCldPubID,
		Schedules:      uc.Schedules,
		UpdatedAt:      time.Now().UTC(),
	}
	return svc.repo.UpdateClass(cls)
}

// RegenerateInviteCode invalidates the class's current invite code.
func (svc *Service) RegenerateInviteCode(id int) (Class, error) {
	cls, err := svc.repo.GetClassByID(id)
	if err != nil {
		return Class{}, err
	}
	cls.InviteCode = NewInviteCode()
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(cls)
}

func (svc *Service) DeleteClasses(ids ...int) error {
	return svc.repo.DeleteClassesByID(ids...)
}

// AccessRecord assembles the ownership/enrollment facts the access layer
// needs to refine a decision about this class.
func (svc *Service) AccessRecord(classID int) (*access.Record, error) {
	cls, err := svc.repo.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	enrs, err := svc.repo.QueryEnrollments(EnrollmentFilter{ClassID: classID})
	if err != nil {
		return nil, err
	}
	rec := &access.Record{OwnerID: cls.TeacherID}
	for _, enr := range enrs {
		rec.EnrolledIDs = append(rec.EnrolledIDs, enr.StudentID)
	}
	return rec, nil
}

func (svc *Service) Enroll(ne NewEnrollment) (Enrollment, error) {
	cls, err := svc.repo.GetClassByID(ne.ClassID)
	if err != nil {
		return Enrollment{}, err
	}
	return svc.enroll(cls, ne.StudentID)
}

// JoinByInviteCode enrolls the student in the class matching the invite code
// and emails them a confirmation.
func (svc *Service) JoinByInviteCode(code string, student user.User) (Enrollment, error) {
	cls, err := svc.repo.GetClassByInviteCode(core.CleanString(code, true /* lower */))
	if err != nil {
		if err == ErrClassNotFound {
			return Enrollment{}, ErrInvalidInviteCode
		}
		return Enrollment{}, err
	}

	enr, err := svc.enroll(cls, student.ID)
	if err != nil {
		return Enrollment{}, err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      fmt.Sprintf("[%s] Enrollment Confirmed", svc.conf.AppName),
		TemplateName: "enrollment_confirmed",
		TemplateData: struct {
			Name      string
			ClassName string
			ClassID   int
		}{
			Name:      student.Name,
			ClassName: cls.Name,
			ClassID:   cls.ID,
		},
	}
	svc.mailSvc.SendMessages(msg)
	return enr, nil
}

func (svc *Service) enroll(cls Class, studentID string) (Enrollment, error) {
	if !cls.IsActive() {
		return Enrollment{}, ErrClassInactive
	}

	exists, err := svc.repo.EnrollmentExists(cls.ID, studentID)
	if err != nil {
		return Enrollment{}, err
	}
	if exists {
		return Enrollment{}, ErrAlreadyEnrolled
	}

	count, err := svc.repo.CountClassEnrollments(cls.ID)
	if err != nil {
		return Enrollment{}, err
	}
	if count >= cls.Capacity {
		return Enrollment{}, ErrClassFull
	}

	return svc.repo.CreateEnrollment(Enrollment{
		ClassID:   cls.ID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryEnrollments(filter EnrollmentFilter) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(filter)
}

func (svc *Service) GetEnrollmentByID(id int) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(id)
}

func (svc *Service) DeleteEnrollments(ids ...int) error {
	return svc.repo.DeleteEnrollmentsByID(ids...)
}
