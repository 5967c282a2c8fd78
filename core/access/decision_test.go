package access

import (
	"fmt"
	"testing"
)

var (
	anAdmin   = &Principal{ID: "adm-1", Name: "Admin", Email: "admin@test.cd", Role: RoleAdmin}
	aTeacher  = &Principal{ID: "tch-1", Name: "Teacher", Email: "teacher@test.cd", Role: RoleTeacher}
	aStudent  = &Principal{ID: "std-1", Name: "Hero", Email: "hero@test.cd", Role: RoleStudent}
	aStranger = &Principal{ID: "x-1", Name: "Who", Email: "who@test.cd", Role: Role("principal")}
)

func TestEvaluate_table(t *testing.T) {
	allResources := []string{
		ResourceDepartments, ResourceSubjects, ResourceClasses,
		ResourceEnrollments, ResourceLectures, ResourceUsers,
	}
	allActions := []string{ActionList, ActionShow, ActionCreate, ActionEdit, ActionDelete}

	teacherResources := map[string]bool{
		ResourceClasses: true, ResourceLectures: true, ResourceSubjects: true,
		ResourceDepartments: true, ResourceEnrollments: true,
	}
	studentResources := map[string]bool{
		ResourceClasses: true, ResourceLectures: true, ResourceEnrollments: true,
	}
	studentActions := map[string]bool{ActionList: true, ActionShow: true}

	// admin: wildcard on everything
	for _, res := range allResources {
		for _, act := range allActions {
			if d := Evaluate(anAdmin, res, act); !d.Can {
				t.Errorf("admin %s:%s = %+v; want allow", res, act, d)
			}
		}
	}

	// teacher: all actions on the listed resources only
	for _, res := range allResources {
		for _, act := range allActions {
			d := Evaluate(aTeacher, res, act)
			if want := teacherResources[res]; d.Can != want {
				t.Errorf("teacher %s:%s = %+v; want can=%v", res, act, d, want)
			}
			if !d.Can && d.Reason != ReasonNoResourceAccess {
				t.Errorf("teacher %s:%s reason = %q; want %q", res, act, d.Reason, ReasonNoResourceAccess)
			}
		}
	}

	// student: list/show on the listed resources only
	for _, res := range allResources {
		for _, act := range allActions {
			d := Evaluate(aStudent, res, act)
			want := studentResources[res] && studentActions[act]
			if d.Can != want {
				t.Errorf("student %s:%s = %+v; want can=%v", res, act, d, want)
			}
			if !d.Can {
				wantReason := ReasonNoResourceAccess
				if studentResources[res] {
					wantReason = ReasonNoActionAccess
				}
				if d.Reason != wantReason {
					t.Errorf("student %s:%s reason = %q; want %q", res, act, d.Reason, wantReason)
				}
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		resource  string
		action    string
		rec       *Record
		want      Decision
	}{
		{
			name:     "unauthenticated denies",
			resource: ResourceClasses, action: ActionList,
			want: Deny(ReasonNotAuthenticated),
		},
		{
			name:      "unknown role denies",
			principal: aStranger, resource: ResourceClasses, action: ActionList,
			want: Deny(ReasonInvalidRole),
		},
		{
			name:      "student cannot edit classes",
			principal: aStudent, resource: ResourceClasses, action: ActionEdit,
			want: Deny(ReasonNoActionAccess),
		},
		{
			name:      "teacher can create classes",
			principal: aTeacher, resource: ResourceClasses, action: ActionCreate,
			want: Allow(),
		},
		{
			name:      "admin wildcard",
			principal: anAdmin, resource: "anything", action: "anything",
			want: Allow(),
		},
		{
			name:      "teacher edits own class",
			principal: aTeacher, resource: ResourceClasses, action: ActionEdit,
			rec:  &Record{OwnerID: aTeacher.ID},
			want: Allow(),
		},
		{
			name:      "teacher cannot edit another teacher's class",
			principal: aTeacher, resource: ResourceClasses, action: ActionEdit,
			rec:  &Record{OwnerID: "tch-2"},
			want: Deny(ReasonNoResourceAccess),
		},
		{
			name:      "teacher cannot delete another teacher's class",
			principal: aTeacher, resource: ResourceClasses, action: ActionDelete,
			rec:  &Record{OwnerID: "tch-2"},
			want: Deny(ReasonNoResourceAccess),
		},
		{
			name:      "student shows enrolled class",
			principal: aStudent, resource: ResourceClasses, action: ActionShow,
			rec:  &Record{EnrolledIDs: []string{"std-2", aStudent.ID}},
			want: Allow(),
		},
		{
			name:      "student cannot show un-enrolled class",
			principal: aStudent, resource: ResourceClasses, action: ActionShow,
			rec:  &Record{EnrolledIDs: []string{"std-2"}},
			want: Deny(ReasonNoResourceAccess),
		},
		{
			name:      "admin ignores record refinements",
			principal: anAdmin, resource: ResourceClasses, action: ActionDelete,
			rec:  &Record{OwnerID: "tch-2"},
			want: Allow(),
		},
		{
			name:      "no record context keeps the table decision",
			principal: aTeacher, resource: ResourceClasses, action: ActionEdit,
			want: Allow(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Decision
			if tt.rec != nil {
				got = Evaluate(tt.principal, tt.resource, tt.action, tt.rec)
			} else {
				got = Evaluate(tt.principal, tt.resource, tt.action)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, role := range AllRoles {
		if !role.IsValid() {
			t.Errorf("%s.IsValid() = false; want true", role)
		}
	}
	if Role("principal").IsValid() {
		t.Error(`Role("principal").IsValid() = true; want false`)
	}
}

// every role in the table must be a known role; guards against typos when
// the table is edited.
func TestRolePermissions_exhaustive(t *testing.T) {
	for role := range rolePermissions {
		if !role.IsValid() {
			t.Errorf("rolePermissions contains unknown role %q", role)
		}
	}
	for _, role := range AllRoles {
		if _, ok := PermissionsFor(role); !ok {
			t.Errorf("no permissions entry for role %q", role)
		}
	}
}

func ExampleEvaluate() {
	teacher := &Principal{ID: "t1", Role: RoleTeacher}
	fmt.Println(Evaluate(teacher, ResourceClasses, ActionCreate).Can)
	fmt.Println(Evaluate(teacher, ResourceUsers, ActionList).Reason)
	// Output:
	// true
	// no access to resource
}
