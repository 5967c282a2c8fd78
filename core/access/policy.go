package access

// Role is the portal a user belongs to; it drives all access decisions.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Resources
const (
	ResourceDepartments = "departments"
	ResourceSubjects    = "subjects"
	ResourceClasses     = "classes"
	ResourceEnrollments = "enrollments"
	ResourceLectures    = "lectures"
	// lecture-content is a distinct REST resource but rides on the
	// lectures permissions when guarded.
	ResourceLectureContent = "lecture-content"
	ResourceUsers          = "users"
)

// Actions
const (
	ActionList   = "list"
	ActionShow   = "show"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Wildcard matches any resource or action; it is a literal, not a glob.
const Wildcard = "*"

// Permissions declares what a role may touch. Names are matched by exact equality.
type Permissions struct {
	Resources []string
	Actions   []string
}

// rolePermissions is the static role-based permissions configuration.
// It is defined once and never mutated at runtime.
var rolePermissions = map[Role]Permissions{
	RoleAdmin: {
		Resources: []string{Wildcard},
		Actions:   []string{Wildcard},
	},
	RoleTeacher: {
		Resources: []string{
			ResourceClasses,
			ResourceLectures,
			ResourceSubjects,
			ResourceDepartments,
			ResourceEnrollments,
		},
		Actions: []string{ActionList, ActionShow, ActionCreate, ActionEdit, ActionDelete},
	},
	RoleStudent: {
		Resources: []string{ResourceClasses, ResourceLectures, ResourceEnrollments},
		Actions:   []string{ActionList, ActionShow},
	},
}

// PermissionsFor returns the permissions entry for a role.
func PermissionsFor(role Role) (Permissions, bool) {
	perms, ok := rolePermissions[role]
	return perms, ok
}

func (p Permissions) AllowsResource(resource string) bool { return contains(p.Resources, resource) }
func (p Permissions) AllowsAction(action string) bool     { return contains(p.Actions, action) }

func contains(set []string, name string) bool {
	for _, s := range set {
		if s == Wildcard || s == name {
			return true
		}
	}
	return false
}
