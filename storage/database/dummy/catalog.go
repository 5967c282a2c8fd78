package dummydb

import (
	"sort"
	"strings"

	"github.com/darasahq/darasa/core/catalog"
)

type catalogRepository struct {
	departments *departmentTable
	subjects    *subjectTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{
		departments: db.department,
		subjects:    db.subject,
	}
}

// Departments

func (repo *catalogRepository) queryDepartments() []catalog.Department {
	depts := make([]catalog.Department, 0, len(repo.departments.table))
	for _, d := range repo.departments.table {
		depts = append(depts, *d)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].ID < depts[j].ID })
	return depts
}

func (repo *catalogRepository) CheckDepartmentCodeUniqueness(code string, excluded ...catalog.Department) error {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	for _, dept := range repo.queryDepartments() {
		if dept.Code != code {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == dept.ID {
				excl = true
				break
			}
		}
		if !excl {
			return catalog.ErrDeptCodeExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateDepartment(dept catalog.Department) (catalog.Department, error) {
	repo.departments.Lock()
	defer repo.departments.Unlock()

	repo.departments.seq++
	dept.ID = repo.departments.seq
	repo.departments.table[dept.ID] = &dept
	return dept, nil
}

func (repo *catalogRepository) QueryAllDepartments() ([]catalog.Department, error) {
	repo.departments.RLock()
	defer repo.departments.RUnlock()
	return repo.queryDepartments(), nil
}

func (repo *catalogRepository) GetDepartmentByID(id int) (catalog.Department, error) {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	if dept, ok := repo.departments.table[id]; ok {
		return *dept, nil
	}
	return catalog.Department{}, catalog.ErrDepartmentNotFound
}

func (repo *catalogRepository) UpdateDepartment(dept catalog.Department) (catalog.Department, error) {
	repo.departments.Lock()
	defer repo.departments.Unlock()

	orig, ok := repo.departments.table[dept.ID]
	if !ok {
		return catalog.Department{}, catalog.ErrDepartmentNotFound
	}

	if dept.Code != "" {
		orig.Code = dept.Code
	}
	if dept.Name != "" {
		orig.Name = dept.Name
	}
	if dept.Description != "" {
		orig.Description = dept.Description
	}
	if !dept.UpdatedAt.IsZero() {
		orig.UpdatedAt = dept.UpdatedAt
	}
	return *orig, nil
}

func (repo *catalogRepository) DeleteDepartmentsByID(ids ...int) error {
	repo.departments.Lock()
	defer repo.departments.Unlock()

	for _, id := range ids {
		delete(repo.departments.table, id)
	}
	return nil
}

// Subjects

func (repo *catalogRepository) querySubjects() []catalog.Subject {
	subs := make([]catalog.Subject, 0, len(repo.subjects.table))
	for _, s := range repo.subjects.table {
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs
}

func (repo *catalogRepository) CheckSubjectCodeUniqueness(code string, excluded ...catalog.Subject) error {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	for _, sub := range repo.querySubjects() {
		if sub.Code != code {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == sub.ID {
				excl = true
				break
			}
		}
		if !excl {
			return catalog.ErrSubjectCodeExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateSubject(sub catalog.Subject) (catalog.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	repo.subjects.seq++
	sub.ID = repo.subjects.seq
	repo.subjects.table[sub.ID] = &sub
	return sub, nil
}

func (repo *catalogRepository) QueryAllSubjects() ([]catalog.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()
	return repo.querySubjects(), nil
}

func (repo *catalogRepository) FilterSubjects(filter catalog.SubjectFilter) ([]catalog.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	matches := make([]catalog.Subject, 0)
	search := strings.ToLower(filter.Search)
	for _, sub := range repo.querySubjects() {
		if search != "" &&
			!strings.Contains(strings.ToLower(sub.Name), search) &&
			!strings.Contains(strings.ToLower(sub.Code), search) {
			continue
		}
		if filter.DepartmentID != 0 && sub.DepartmentID != filter.DepartmentID {
			continue
		}
		matches = append(matches, sub)
	}
	return matches, nil
}

func (repo *catalogRepository) GetSubjectByID(id int) (catalog.Subject, error) {
	repo.subjects.RLock()
	defer repo.subjects.RUnlock()

	if sub, ok := repo.subjects.table[id]; ok {
		return *sub, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) UpdateSubject(sub catalog.Subject) (catalog.Subject, error) {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	orig, ok := repo.subjects.table[sub.ID]
	if !ok {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}

	if sub.DepartmentID != 0 {
		orig.DepartmentID = sub.DepartmentID
	}
	if sub.Code != "" {
		orig.Code = sub.Code
	}
	if sub.Name != "" {
		orig.Name = sub.Name
	}
	if sub.Description != "" {
		orig.Description = sub.Description
	}
	if !sub.UpdatedAt.IsZero() {
		orig.UpdatedAt = sub.UpdatedAt
	}
	return *orig, nil
}

func (repo *catalogRepository) DeleteSubjectsByID(ids ...int) error {
	repo.subjects.Lock()
	defer repo.subjects.Unlock()

	for _, id := range ids {
		delete(repo.subjects.table, id)
	}
	return nil
}
