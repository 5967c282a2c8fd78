package access

// Principal is the authenticated user record driving access decisions.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (p *Principal) HasAnyRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool   { return p != nil && p.Role == RoleAdmin }
func (p *Principal) IsTeacher() bool { return p != nil && p.Role == RoleTeacher }
func (p *Principal) IsStudent() bool { return p != nil && p.Role == RoleStudent }

// Decision is the outcome of evaluating a principal against policy
// for a (resource, action) pair. It is never persisted.
type Decision struct {
	Can    bool
	Reason string
}

// Denial reasons. These are retained for logging; they are not internal
// error detail and are safe to surface.
const (
	ReasonNotAuthenticated = "not authenticated"
	ReasonInvalidRole      = "invalid role"
	ReasonNoResourceAccess = "no access to resource"
	ReasonNoActionAccess   = "no access to action"
	// ReasonEvaluationFault is the generic fail-closed reason; identity
	// lookup failures never leak their detail into a Decision.
	ReasonEvaluationFault = "access control error"
)

func Allow() Decision            { return Decision{Can: true} }
func Deny(reason string) Decision { return Decision{Can: false, Reason: reason} }

// Record carries ownership/enrollment facts about the target record so a
// decision can be tightened beyond the role table. Callers that do not have
// the record at hand omit it and get the plain table decision.
type Record struct {
	// OwnerID is the ID of the teacher owning the record (eg. a class).
	OwnerID string
	// EnrolledIDs are the student IDs enrolled in the record's class.
	EnrolledIDs []string
}

func (r *Record) enrolled(id string) bool {
	for _, sid := range r.EnrolledIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// Evaluate resolves (resource, action) against the role permissions table
// for the given principal. A nil principal is an unauthenticated request;
// callers must not call Evaluate while identity resolution is still pending.
func Evaluate(p *Principal, resource, action string, rec ...*Record) Decision {
	if p == nil {
		return Deny(ReasonNotAuthenticated)
	}

	perms, ok := PermissionsFor(p.Role)
	if !ok {
		return Deny(ReasonInvalidRole)
	}
	if !perms.AllowsResource(resource) {
		return Deny(ReasonNoResourceAccess)
	}
	if !perms.AllowsAction(action) {
		return Deny(ReasonNoActionAccess)
	}

	// Scoped refinements: an otherwise-allow decision may be tightened when
	// the target record is supplied. Without a record the table decision
	// stands, matching the front-end's behavior where ownership checks
	// were deferred to the record-level endpoints.
	if len(rec) > 0 && rec[0] != nil {
		return refine(p, resource, action, rec[0])
	}
	return Allow()
}

// refine tightens a decision with ownership/enrollment facts:
// teachers may only edit/delete their own classes (and their lectures),
// students may only show classes they are enrolled in.
func refine(p *Principal, resource, action string, rec *Record) Decision {
	switch p.Role {
	case RoleTeacher:
		if (action == ActionEdit || action == ActionDelete) && rec.OwnerID != "" && rec.OwnerID != p.ID {
			return Deny(ReasonNoResourceAccess)
		}
	case RoleStudent:
		if resource == ResourceClasses && action == ActionShow && !rec.enrolled(p.ID) {
			return Deny(ReasonNoResourceAccess)
		}
	}
	return Allow()
}
