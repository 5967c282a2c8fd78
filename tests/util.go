package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/catalog"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role access.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateDepartment(t *testing.T, repo catalog.Repository, name, code string) catalog.Department {
	t.Helper()

	now := time.Now().UTC()
	dept, err := repo.CreateDepartment(catalog.Department{Name: name, Code: code, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}

func CreateSubject(t *testing.T, repo catalog.Repository, deptID int, name, code string) catalog.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubject(catalog.Subject{DepartmentID: deptID, Name: name, Code: code, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateClass(
	t *testing.T,
	repo classroom.Repository,
	subjectID int,
	teacherID, name string,
	capacity int,
	status string,
) classroom.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := repo.CreateClass(classroom.Class{
		SubjectID:  subjectID,
		TeacherID:  teacherID,
		Name:       name,
		Capacity:   capacity,
		Status:     status,
		InviteCode: classroom.NewInviteCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateEnrollment(t *testing.T, repo classroom.Repository, classID int, studentID string) classroom.Enrollment {
	t.Helper()

	enr, err := repo.CreateEnrollment(classroom.Enrollment{
		ClassID:   classID,
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}

func CreateLecture(
	t *testing.T,
	repo lecture.Repository,
	classID int,
	title string,
	order int,
	isPublished bool,
) lecture.Lecture {
	t.Helper()

	now := time.Now().UTC()
	lec, err := repo.CreateLecture(lecture.Lecture{
		ClassID:     classID,
		Title:       title,
		Order:       order,
		IsPublished: isPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateLecture() failed: %v", err)
	}
	return lec
}

func CreateContent(
	t *testing.T,
	repo lecture.Repository,
	lectureID int,
	typ, title, url string,
	order int,
) lecture.Content {
	t.Helper()

	now := time.Now().UTC()
	cnt, err := repo.CreateContent(lecture.Content{
		LectureID: lectureID,
		Type:      typ,
		Title:     title,
		URL:       url,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateContent() failed: %v", err)
	}
	return cnt
}
