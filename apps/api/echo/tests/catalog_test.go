package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/catalog"
	testutil "github.com/darasahq/darasa/tests"
)

func Test_catalogApi_queryDepartments(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", access.RoleAdmin, true, now.Add(2*time.Hour))

	dept1 := testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")
	dept2 := testutil.CreateDepartment(t, catalogRepo, "Humanities", "hum")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "student denied", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc)},
		{name: "teacher allowed", token: getToken(t, teacher), wantCode: http.StatusOK, wantData: marchallList(t, dept1, dept2)},
		{name: "admin allowed", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, dept1, dept2)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/departments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_createDepartment(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))

	testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")

	tests := []httpTest{
		{
			name: "student denied", token: getToken(t, student),
			body:     marchallObj(t, catalog.NewDepartment{Code: "hum", Name: "Humanities"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc),
		},
		{
			name: "required fields", token: getToken(t, teacher), body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "this field is required", "name": "this field is required"}),
		},
		{
			name: "duplicate code", token: getToken(t, teacher),
			body:     marchallObj(t, catalog.NewDepartment{Code: "SCI", Name: "Science Duplicate"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a department with this code already exists"}),
		},
		{
			name: "teacher creates", token: getToken(t, teacher),
			body:     marchallObj(t, catalog.NewDepartment{Code: "HUM", Name: "Humanities"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/departments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				dept, err := catalogRepo.GetDepartmentByID(2)
				if err != nil {
					t.Fatalf("GetDepartmentByID(): %v", err)
				}
				// codes are normalized to lowercase
				if dept.Code != "hum" || dept.Name != "Humanities" {
					t.Errorf("unexpected created department: %+v", dept)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_departmentDetail(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true)
	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")
	path := fmt.Sprintf("/v1/departments/%d", dept.ID)
	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodGet, "/v1/departments/999", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "department not found"})}, rec)

	req, rec = newAuthRequest(http.MethodGet, path, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallDetail(t, dept)}, rec)

	req, rec = newAuthRequest(http.MethodPut, path, token, marchallObj(t, catalog.UpdateDepartment{Name: "Natural Sciences"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	refreshed, err := catalogRepo.GetDepartmentByID(dept.ID)
	if err != nil {
		t.Fatalf("GetDepartmentByID(): %v", err)
	}
	if refreshed.Name != "Natural Sciences" || refreshed.Code != "sci" {
		t.Errorf("unexpected department after update: %+v", refreshed)
	}

	req, rec = newAuthRequest(http.MethodDelete, path, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if _, err := catalogRepo.GetDepartmentByID(dept.ID); err != catalog.ErrDepartmentNotFound {
		t.Errorf("GetDepartmentByID() error = %v; want %v", err, catalog.ErrDepartmentNotFound)
	}
}

func Test_catalogApi_querySubjects(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))

	dept1 := testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")
	dept2 := testutil.CreateDepartment(t, catalogRepo, "Humanities", "hum")
	sub1 := testutil.CreateSubject(t, catalogRepo, dept1.ID, "Mathematics", "math101")
	sub2 := testutil.CreateSubject(t, catalogRepo, dept2.ID, "History", "hist101")

	token := getToken(t, teacher)

	tests := []httpTest{
		{name: "student denied", path: "/v1/subjects", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc)},
		{name: "get all", path: "/v1/subjects", token: token, wantCode: http.StatusOK, wantData: marchallList(t, sub1, sub2)},
		{name: "search", path: "/v1/subjects?search=math", token: token, wantCode: http.StatusOK, wantData: marchallList(t, sub1)},
		{name: "by department", path: fmt.Sprintf("/v1/subjects?department_id=%d", dept2.ID), token: token, wantCode: http.StatusOK, wantData: marchallList(t, sub2)},
		{name: "no match", path: "/v1/subjects?search=biology", token: token, wantCode: http.StatusOK, wantData: marchallList(t)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_createSubject(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true)
	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")
	testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "math101")

	tests := []httpTest{
		{
			name: "required fields", body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"department_id": "this field is required",
				"code":          "this field is required",
				"name":          "this field is required",
			}),
		},
		{
			name:     "unknown department",
			body:     marchallObj(t, catalog.NewSubject{DepartmentID: 999, Code: "phy101", Name: "Physics"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"department_id": "department not found"}),
		},
		{
			name:     "duplicate code",
			body:     marchallObj(t, catalog.NewSubject{DepartmentID: dept.ID, Code: "MATH101", Name: "Maths Duplicate"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a subject with this code already exists"}),
		},
		{
			name:     "teacher creates",
			body:     marchallObj(t, catalog.NewSubject{DepartmentID: dept.ID, Code: "PHY101", Name: "Physics"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/subjects"
		tt.token = getToken(t, teacher)

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				sub, err := catalogRepo.GetSubjectByID(2)
				if err != nil {
					t.Fatalf("GetSubjectByID(): %v", err)
				}
				if sub.Code != "phy101" || sub.DepartmentID != dept.ID {
					t.Errorf("unexpected created subject: %+v", sub)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_catalogApi_subjectDetail(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true)
	dept1 := testutil.CreateDepartment(t, catalogRepo, "Sciences", "sci")
	dept2 := testutil.CreateDepartment(t, catalogRepo, "Humanities", "hum")
	sub := testutil.CreateSubject(t, catalogRepo, dept1.ID, "Mathematics", "math101")
	path := fmt.Sprintf("/v1/subjects/%d", sub.ID)
	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodGet, "/v1/subjects/999", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "subject not found"})}, rec)

	req, rec = newAuthRequest(http.MethodGet, path, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallDetail(t, sub)}, rec)

	// move the subject to another department
	req, rec = newAuthRequest(http.MethodPut, path, token, marchallObj(t, catalog.UpdateSubject{DepartmentID: dept2.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	refreshed, err := catalogRepo.GetSubjectByID(sub.ID)
	if err != nil {
		t.Fatalf("GetSubjectByID(): %v", err)
	}
	if refreshed.DepartmentID != dept2.ID || refreshed.Code != "math101" {
		t.Errorf("unexpected subject after update: %+v", refreshed)
	}

	req, rec = newAuthRequest(http.MethodDelete, path, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if _, err := catalogRepo.GetSubjectByID(sub.ID); err != catalog.ErrSubjectNotFound {
		t.Errorf("GetSubjectByID() error = %v; want %v", err, catalog.ErrSubjectNotFound)
	}
}
