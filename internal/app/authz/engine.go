// Package authz decides whether a principal may perform an operation on a kind of
// resource. Decide is pure: it performs no I/O, keeps no state and never fails.
package authz

import (
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"fmt"
)

type ResourceKind string

const (
	KindStudent    ResourceKind = "student"
	KindProfessor  ResourceKind = "professor"
	KindDiscipline ResourceKind = "discipline"
	KindClass      ResourceKind = "class"
	KindEnrollment ResourceKind = "enrollment"
	KindGrade      ResourceKind = "grade"
	KindUser       ResourceKind = "user"
	KindAuth       ResourceKind = "auth"
)

type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read" // read-one and read-by-relation
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpManage Operation = "manage" // role and activation changes on users
	OpLogin  Operation = "login"
	OpLogout Operation = "logout"
)

// AllKinds and AllOperations enumerate the closed sets, mostly for exhaustive tests.
var (
	AllKinds = []ResourceKind{
		KindStudent, KindProfessor, KindDiscipline, KindClass,
		KindEnrollment, KindGrade, KindUser, KindAuth,
	}
	AllOperations = []Operation{
		OpList, OpRead, OpCreate, OpUpdate, OpDelete, OpManage, OpLogin, OpLogout,
	}
)

// Decision is the outcome of Decide. Reason is safe to show to the caller.
type Decision struct {
	Allowed bool
	Reason  string

	unauthenticated bool
}

var allow = Decision{Allowed: true}

func deny(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Err converts a denial into the error kind resource services return.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.unauthenticated {
		return common.ErrUnauthenticated
	}
	return fmt.Errorf("%s: %w", d.Reason, common.ErrForbidden)
}

type route struct {
	kind ResourceKind
	op   Operation
}

// publicRoutes is an explicit whitelist; anything absent requires a principal.
var publicRoutes = map[route]struct{}{
	{KindUser, OpCreate}: {},
	{KindAuth, OpLogin}:  {},
}

// rule evaluates one cell of the policy table for a non-admin principal.
type rule func(p *model.Principal, kind ResourceKind, op Operation, owner *int64) Decision

func anyAuthenticated(*model.Principal, ResourceKind, Operation, *int64) Decision {
	return allow
}

func adminOnly(_ *model.Principal, kind ResourceKind, op Operation, _ *int64) Decision {
	return deny("only administrators may %s %s records", op, kind)
}

func selfOnly(p *model.Principal, kind ResourceKind, op Operation, owner *int64) Decision {
	if owner != nil && *owner == p.ID() {
		return allow
	}
	return deny("you may only %s your own %s records", op, kind)
}

var catalogRules = map[Operation]rule{
	OpList:   anyAuthenticated,
	OpRead:   anyAuthenticated,
	OpCreate: adminOnly,
	OpUpdate: adminOnly,
	OpDelete: adminOnly,
}

var personalRules = map[Operation]rule{
	OpList:   adminOnly,
	OpRead:   selfOnly,
	OpCreate: adminOnly,
	OpUpdate: adminOnly,
	OpDelete: adminOnly,
}

var policy = map[ResourceKind]map[Operation]rule{
	KindStudent:    catalogRules,
	KindProfessor:  catalogRules,
	KindDiscipline: catalogRules,
	KindClass:      catalogRules,
	KindGrade:      personalRules,
	KindEnrollment: personalRules,
	KindUser: {
		OpList:   adminOnly,
		OpRead:   selfOnly,
		OpCreate: anyAuthenticated,
		OpUpdate: selfOnly,
		OpDelete: selfOnly,
		OpManage: adminOnly,
	},
	KindAuth: {
		OpLogin:  anyAuthenticated,
		OpLogout: anyAuthenticated,
	},
}

// Decide evaluates the public whitelist first, then the unauthenticated denial, then
// the administrator bypass and finally the per-kind table. Uncovered pairs are denied.
// owner is the id of the principal that owns the target record, or nil when the
// operation has no single owner.
func Decide(p *model.Principal, kind ResourceKind, op Operation, owner *int64) Decision {
	if p == nil {
		if _, ok := publicRoutes[route{kind, op}]; ok {
			return allow
		}
		d := deny("unauthenticated")
		d.unauthenticated = true
		return d
	}

	if p.IsAdmin() {
		return allow
	}

	if r, ok := policy[kind][op]; ok {
		return r(p, kind, op, owner)
	}
	return deny("operation %s on %s is not permitted", op, kind)
}

// Authorize is Decide followed by Err.
func Authorize(p *model.Principal, kind ResourceKind, op Operation, owner *int64) error {
	return Decide(p, kind, op, owner).Err()
}

// Owner returns a pointer to id, for passing ownership into Decide.
func Owner(id int64) *int64 {
	return &id
}
