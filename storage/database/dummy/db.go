// Package dummydb provides in-memory repositories for local dev and tests.
package dummydb

import (
	"sync"

	"github.com/darasahq/darasa/core/catalog"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		department *departmentTable
		subject    *subjectTable
		class      *classTable
		enrollment *enrollmentTable
		lecture    *lectureTable
		content    *contentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	departmentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*catalog.Department
	}

	subjectTable struct {
		sync.RWMutex
		seq   int
		table map[int]*catalog.Subject
	}

	classTable struct {
		sync.RWMutex
		seq   int
		table map[int]*classroom.Class
	}

	enrollmentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*classroom.Enrollment
	}

	lectureTable struct {
		sync.RWMutex
		seq   int
		table map[int]*lecture.Lecture
	}

	contentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*lecture.Content
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		department: &departmentTable{table: make(map[int]*catalog.Department)},
		subject:    &subjectTable{table: make(map[int]*catalog.Subject)},
		class:      &classTable{table: make(map[int]*classroom.Class)},
		enrollment: &enrollmentTable{table: make(map[int]*classroom.Enrollment)},
		lecture:    &lectureTable{table: make(map[int]*lecture.Lecture)},
		content:    &contentTable{table: make(map[int]*lecture.Content)},
	}
	return db, nil
}
