package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	testutil "github.com/darasahq/darasa/tests"
)

func Test_classroomApi_queryClasses(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher1 := testutil.CreateUser(t, usrRepo, "Teacher One", "t1@test.cd", "", access.RoleTeacher, true, now)
	teacher2 := testutil.CreateUser(t, usrRepo, "Teacher Two", "t2@test.cd", "", access.RoleTeacher, true, now.Add(time.Hour))
	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(2*time.Hour))
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", access.RoleStudent, true, now.Add(3*time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", access.RoleAdmin, true, now.Add(4*time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")

	cls1 := testutil.CreateClass(t, classroomRepo, sub.ID, teacher1.ID, "Algebra", 30, classroom.StatusActive)
	cls2 := testutil.CreateClass(t, classroomRepo, sub.ID, teacher2.ID, "Geometry", 30, classroom.StatusActive)
	testutil.CreateEnrollment(t, classroomRepo, cls1.ID, student1.ID)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin sees all", token: getToken(t, admin), wantData: marchallList(t, cls1, cls2)},
		{name: "teacher sees own", token: getToken(t, teacher1), wantData: marchallList(t, cls1)},
		{name: "student sees enrolled", token: getToken(t, student1), wantData: marchallList(t, cls1)},
		{name: "student with no classes", token: getToken(t, student2), wantData: marchallList(t)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/classes"
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusUnauthorized {
				if got := rec.Header().Get("X-Requested-Path"); got != "/v1/classes" {
					t.Errorf("X-Requested-Path = %q; want %q", got, "/v1/classes")
				}
			}
		})
	}
}

func Test_classroomApi_createClass(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, time.Now().Add(time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")

	schedules := []classroom.Schedule{{Day: "monday", StartTime: "09:00", EndTime: "10:30"}}
	payload := marchallObj(t, classroom.NewClass{SubjectID: sub.ID, Name: "Algebra", Capacity: 30, Schedules: schedules})
	badSchedule := marchallObj(t, classroom.NewClass{
		SubjectID: sub.ID, Name: "Algebra", Capacity: 30,
		Schedules: []classroom.Schedule{{Day: "monday", StartTime: "10:30", EndTime: "09:00"}},
	})

	tests := []httpTest{
		{
			name: "student denied", token: getToken(t, student), body: payload,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoActionAccess),
		},
		{
			name: "required fields", token: getToken(t, teacher), body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_id": "this field is required", "name": "this field is required", "capacity": "this field is required"}),
		},
		{
			name: "schedule ends before it starts", token: getToken(t, teacher), body: badSchedule,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_time": "must be later than the start time"}),
		},
		{name: "teacher creates", token: getToken(t, teacher), body: payload, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/classes"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				cls, err := classroomRepo.GetClassByID(1)
				if err != nil {
					t.Fatalf("GetClassByID(): %v", err)
				}
				if cls.TeacherID != teacher.ID || cls.Status != classroom.StatusActive || cls.InviteCode == "" {
					t.Errorf("unexpected created class: %+v", cls)
				}
				if len(cls.Schedules) != 1 || cls.Schedules[0] != schedules[0] {
					t.Errorf("schedules = %+v; want %+v", cls.Schedules, schedules)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classroomApi_retrieveClass(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", access.RoleStudent, true, now.Add(2*time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "Algebra", 30, classroom.StatusActive)
	testutil.CreateEnrollment(t, classroomRepo, cls.ID, student1.ID)

	blanked := cls
	blanked.InviteCode = ""

	// a valid token whose subject no longer exists
	ghost := user.User{ID: uuid.New().String(), Name: "Ghost", Email: "ghost@test.cd", Role: access.RoleStudent, IsActive: true}

	path := fmt.Sprintf("/v1/classes/%d", cls.ID)
	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "unknown subject denied", path: path, token: getToken(t, ghost), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthed)},
		{name: "teacher sees invite code", path: path, token: getToken(t, teacher), wantCode: http.StatusOK, wantData: marchallDetail(t, cls)},
		{name: "enrolled student: code hidden", path: path, token: getToken(t, student1), wantCode: http.StatusOK, wantData: marchallDetail(t, blanked)},
		{name: "unenrolled student denied", path: path, token: getToken(t, student2), wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc)},
		{name: "unknown class", path: "/v1/classes/999", token: getToken(t, teacher), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusUnauthorized {
				if got := rec.Header().Get("X-Requested-Path"); got != tt.path {
					t.Errorf("X-Requested-Path = %q; want %q", got, tt.path)
				}
			}
		})
	}
}

func Test_classroomApi_updateClass(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher1 := testutil.CreateUser(t, usrRepo, "Teacher One", "t1@test.cd", "", access.RoleTeacher, true, now)
	teacher2 := testutil.CreateUser(t, usrRepo, "Teacher Two", "t2@test.cd", "", access.RoleTeacher, true, now.Add(time.Hour))
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(2*time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", access.RoleAdmin, true, now.Add(3*time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher1.ID, "Algebra", 30, classroom.StatusActive)
	testutil.CreateEnrollment(t, classroomRepo, cls.ID, student.ID)

	path := fmt.Sprintf("/v1/classes/%d", cls.ID)
	payload := marchallObj(t, classroom.UpdateClass{Name: "Algebra II"})

	tests := []httpTest{
		{
			name: "student cannot edit", token: getToken(t, student), body: payload,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoActionAccess),
		},
		{
			name: "not the owning teacher", token: getToken(t, teacher2), body: payload,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc),
		},
		{name: "owner edits", token: getToken(t, teacher1), body: payload, wantCode: http.StatusOK},
		{
			name: "admin edits any", token: getToken(t, admin),
			body: marchallObj(t, classroom.UpdateClass{Status: classroom.StatusInactive}), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = path

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}

	refreshed, err := classroomRepo.GetClassByID(cls.ID)
	if err != nil {
		t.Fatalf("GetClassByID(): %v", err)
	}
	if refreshed.Name != "Algebra II" || refreshed.Status != classroom.StatusInactive {
		t.Errorf("unexpected class after updates: %+v", refreshed)
	}
}

func Test_classroomApi_regenerateInviteCode(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true)

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "Algebra", 30, classroom.StatusActive)

	req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/classes/%d/invite-code", cls.ID), getToken(t, teacher))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	refreshed, err := classroomRepo.GetClassByID(cls.ID)
	if err != nil {
		t.Fatalf("GetClassByID(): %v", err)
	}
	if refreshed.InviteCode == "" || refreshed.InviteCode == cls.InviteCode {
		t.Errorf("invite code not regenerated: %q -> %q", cls.InviteCode, refreshed.InviteCode)
	}
}

func Test_classroomApi_destroyClass(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher1 := testutil.CreateUser(t, usrRepo, "Teacher One", "t1@test.cd", "", access.RoleTeacher, true, now)
	teacher2 := testutil.CreateUser(t, usrRepo, "Teacher Two", "t2@test.cd", "", access.RoleTeacher, true, now.Add(time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher1.ID, "Algebra", 30, classroom.StatusActive)

	path := fmt.Sprintf("/v1/classes/%d", cls.ID)

	req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, teacher2))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoResourceAcc)}, rec)

	req, rec = newAuthRequest(http.MethodDelete, path, getToken(t, teacher1))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if _, err := classroomRepo.GetClassByID(cls.ID); err != classroom.ErrClassNotFound {
		t.Errorf("GetClassByID() error = %v; want %v", err, classroom.ErrClassNotFound)
	}
}

func Test_classroomApi_enrollments(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", access.RoleStudent, true, now.Add(2*time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", access.RoleAdmin, true, now.Add(3*time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "Algebra", 30, classroom.StatusActive)

	enr1 := testutil.CreateEnrollment(t, classroomRepo, cls.ID, student1.ID)

	// students may not enroll directly
	req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", getToken(t, student2),
		marchallObj(t, classroom.NewEnrollment{ClassID: cls.ID, StudentID: student2.ID}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errNoActionAccess)}, rec)

	// the teacher enrolls student2
	req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments", getToken(t, teacher),
		marchallObj(t, classroom.NewEnrollment{ClassID: cls.ID, StudentID: student2.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	enrs, err := classroomRepo.QueryEnrollments(classroom.EnrollmentFilter{ClassID: cls.ID})
	if err != nil {
		t.Fatalf("QueryEnrollments(): %v", err)
	}
	if len(enrs) != 2 {
		t.Fatalf("len(enrollments) = %d; want 2", len(enrs))
	}
	enr2 := enrs[1]

	listTests := []httpTest{
		{name: "admin sees all", token: getToken(t, admin), wantData: marchallList(t, enr1, enr2)},
		{name: "student sees own only", token: getToken(t, student1), wantData: marchallList(t, enr1)},
		{
			name: "student cannot bypass scoping", token: getToken(t, student1),
			path: "/v1/enrollments?student_id=" + student2.ID, wantData: marchallList(t, enr1),
		},
	}
	for _, tt := range listTests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/enrollments"
		}
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// detail: a student can only see their own enrollment
	req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/enrollments/%d", enr2.ID), getToken(t, student1))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)

	req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/enrollments/%d", enr1.ID), getToken(t, student1))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallDetail(t, enr1)}, rec)

	// drop
	req, rec = newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/enrollments/%d", enr2.ID), getToken(t, teacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if _, err := classroomRepo.GetEnrollmentByID(enr2.ID); err != classroom.ErrEnrollmentNotFound {
		t.Errorf("GetEnrollmentByID() error = %v; want %v", err, classroom.ErrEnrollmentNotFound)
	}
}

func Test_classroomApi_joinClass(t *testing.T) {
	app := setup(t)

	now := time.Now()
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "t1@test.cd", "", access.RoleTeacher, true, now)
	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", access.RoleStudent, true, now.Add(time.Hour))
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", access.RoleStudent, true, now.Add(2*time.Hour))

	dept := testutil.CreateDepartment(t, catalogRepo, "Sciences", "SCI")
	sub := testutil.CreateSubject(t, catalogRepo, dept.ID, "Mathematics", "MATH101")
	cls := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "Algebra", 30, classroom.StatusActive)
	inactive := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "History", 30, classroom.StatusInactive)
	full := testutil.CreateClass(t, classroomRepo, sub.ID, teacher.ID, "Chemistry", 1, classroom.StatusActive)
	testutil.CreateEnrollment(t, classroomRepo, full.ID, student2.ID)

	join := func(code string) []byte {
		return marchallObj(t, classroom.JoinClass{InviteCode: code})
	}

	tests := []httpTest{
		{
			name: "teachers cannot join", token: getToken(t, teacher), body: join(cls.InviteCode),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "invalid code", token: getToken(t, student1), body: join("lol"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid invite code"}),
		},
		{
			name: "inactive class", token: getToken(t, student1), body: join(inactive.InviteCode),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "this class is not accepting enrollments"}),
		},
		{
			name: "full class", token: getToken(t, student1), body: join(full.InviteCode),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "this class is full"}),
		},
		{name: "join ok", token: getToken(t, student1), body: join(cls.InviteCode), wantCode: http.StatusCreated},
		{
			name: "already enrolled", token: getToken(t, student1), body: join(cls.InviteCode),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "already enrolled in this class"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/enrollments/join"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				exists, err := classroomRepo.EnrollmentExists(cls.ID, student1.ID)
				if err != nil {
					t.Fatalf("EnrollmentExists(): %v", err)
				}
				if !exists {
					t.Error("student not enrolled after join")
				}
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				msg := emailsvc.SentMessages[0]
				if msg.To[0].Address != student1.Email {
					t.Errorf("confirmation sent to %q; want %q", msg.To[0].Address, student1.Email)
				}
				return
			}
			checkCodeAndData(t, tt, rec)

			if len(emailsvc.SentMessages) > 0 {
				t.Errorf("len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
			}
		})
	}
}
