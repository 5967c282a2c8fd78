package dummydb

import (
	"sort"
	"strings"

	"github.com/darasahq/darasa/core/classroom"
)

type classroomRepository struct {
	classes     *classTable
	enrollments *enrollmentTable
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{
		classes:     db.class,
		enrollments: db.enrollment,
	}
}

// Classes

func (repo *classroomRepository) queryClasses() []classroom.Class {
	classes := make([]classroom.Class, 0, len(repo.classes.table))
	for _, c := range repo.classes.table {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func (repo *classroomRepository) CreateClass(cls classroom.Class) (classroom.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	repo.classes.seq++
	cls.ID = repo.classes.seq
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *classroomRepository) QueryAllClasses() ([]classroom.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()
	return repo.queryClasses(), nil
}

func (repo *classroomRepository) FilterClasses(filter classroom.ClassFilter) ([]classroom.Class, error) {
	var enrolledIn map[int]bool
	if filter.StudentID != "" {
		enrolledIn = make(map[int]bool)
		repo.enrollments.RLock()
		for _, enr := range repo.enrollments.table {
			if enr.StudentID == filter.StudentID {
				enrolledIn[enr.ClassID] = true
			}
		}
		repo.enrollments.RUnlock()
	}

	repo.classes.RLock()
	defer repo.classes.RUnlock()

	matches := make([]classroom.Class, 0)
	search := strings.ToLower(filter.Search)
	for _, cls := range repo.queryClasses() {
		if search != "" && !strings.Contains(strings.ToLower(cls.Name), search) {
			continue
		}
		if filter.SubjectID != 0 && cls.SubjectID != filter.SubjectID {
			continue
		}
		if filter.TeacherID != "" && cls.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Status != "" && cls.Status != filter.Status {
			continue
		}
		if enrolledIn != nil && !enrolledIn[cls.ID] {
			continue
		}
		matches = append(matches, cls)
	}
	return matches, nil
}

func (repo *classroomRepository) GetClassByID(id int) (classroom.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	if cls, ok := repo.classes.table[id]; ok {
		return *cls, nil
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classroomRepository) GetClassByInviteCode(code string) (classroom.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	for _, cls := range repo.queryClasses() {
		if cls.InviteCode == code {
			return cls, nil
		}
	}
	return classroom.Class{}, classroom.ErrClassNotFound
}

func (repo *classroomRepository) UpdateClass(cls classroom.Class) (classroom.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	orig, ok := repo.classes.table[cls.ID]
	if !ok {
		return classroom.Class{}, classroom.ErrClassNotFound
	}

	if cls.SubjectID != 0 {
		orig.SubjectID = cls.SubjectID
	}
	if cls.Name != "" {
		orig.Name = cls.Name
	}
	if cls.Description != "" {
		orig.Description = cls.Description
	}
	if cls.Capacity != 0 {
		orig.Capacity = cls.Capacity
	}
	if cls.Status != "" {
		orig.Status = cls.Status
	}
	if cls.BannerURL != "" {
		orig.BannerURL = cls.BannerURL
		orig.BannerCldPubID = cls.BannerCldPubID
	}
	if cls.InviteCode != "" {
		orig.InviteCode = cls.InviteCode
	}
	if cls.Schedules != nil {
		orig.Schedules = cls.Schedules
	}
	if !cls.UpdatedAt.IsZero() {
		orig.UpdatedAt = cls.UpdatedAt
	}
	return *orig, nil
}

func (repo *classroomRepository) DeleteClassesByID(ids ...int) error {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	for _, id := range ids {
		delete(repo.classes.table, id)
	}
	return nil
}

// Enrollments

func (repo *classroomRepository) queryEnrollments() []classroom.Enrollment {
	enrs := make([]classroom.Enrollment, 0, len(repo.enrollments.table))
	for _, e := range repo.enrollments.table {
		enrs = append(enrs, *e)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].ID < enrs[j].ID })
	return enrs
}

func (repo *classroomRepository) CreateEnrollment(enr classroom.Enrollment) (classroom.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	repo.enrollments.seq++
	enr.ID = repo.enrollments.seq
	repo.enrollments.table[enr.ID] = &enr
	return enr, nil
}

func (repo *classroomRepository) QueryEnrollments(filter classroom.EnrollmentFilter) ([]classroom.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	matches := make([]classroom.Enrollment, 0)
	for _, enr := range repo.queryEnrollments() {
		if filter.ClassID != 0 && enr.ClassID != filter.ClassID {
			continue
		}
		if filter.StudentID != "" && enr.StudentID != filter.StudentID {
			continue
		}
		matches = append(matches, enr)
	}
	return matches, nil
}

func (repo *classroomRepository) GetEnrollmentByID(id int) (classroom.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	if enr, ok := repo.enrollments.table[id]; ok {
		return *enr, nil
	}
	return classroom.Enrollment{}, classroom.ErrEnrollmentNotFound
}

func (repo *classroomRepository) CountClassEnrollments(classID int) (int, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	var count int
	for _, enr := range repo.enrollments.table {
		if enr.ClassID == classID {
			count++
		}
	}
	return count, nil
}

func (repo *classroomRepository) EnrollmentExists(classID int, studentID string) (bool, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	for _, enr := range repo.enrollments.table {
		if enr.ClassID == classID && enr.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) DeleteEnrollmentsByID(ids ...int) error {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	for _, id := range ids {
		delete(repo.enrollments.table, id)
	}
	return nil
}
