// Package access decides which roles may run which operations.
package access

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Role is the caller's privilege level.
type Role int

const (
	RoleAnonymous Role = iota
	RoleReader
	RoleStaff
)

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleStaff:
		return "staff"
	default:
		return "anonymous"
	}
}

// Operation names a guarded use case.
type Operation string

const (
	OpViewSummary     Operation = "view_summary"
	OpBrowseCatalog   Operation = "browse_catalog"
	OpSearch          Operation = "search"
	OpSubmitReview    Operation = "submit_review"
	OpListMyInstances Operation = "list_my_instances"
	OpViewProfile     Operation = "view_profile"
	OpUpdateProfile   Operation = "update_profile"
	OpListInstances   Operation = "list_instances"
	OpViewInstance    Operation = "view_instance"
	OpCreateInstance  Operation = "create_instance"
	OpUpdateInstance  Operation = "update_instance"
	OpAssignReader    Operation = "assign_reader"
	OpReturnInstance  Operation = "return_instance"
	OpManageCatalog   Operation = "manage_catalog"
)

var (
	public  = []Role{RoleAnonymous, RoleReader, RoleStaff}
	members = []Role{RoleReader, RoleStaff}
	staff   = []Role{RoleStaff}
)

// policy lists the roles allowed to perform each operation.
// Operations missing from the table are denied to everyone.
var policy = map[Operation][]Role{
	OpViewSummary:     public,
	OpBrowseCatalog:   public,
	OpSearch:          public,
	OpSubmitReview:    members,
	OpListMyInstances: members,
	OpViewProfile:     members,
	OpUpdateProfile:   members,
	OpListInstances:   staff,
	OpViewInstance:    staff,
	OpCreateInstance:  staff,
	OpUpdateInstance:  staff,
	OpAssignReader:    staff,
	OpReturnInstance:  staff,
	OpManageCatalog:   staff,
}

// Check returns nil when role may perform op. Anonymous callers are told to
// authenticate; authenticated callers without the role get ErrForbidden.
func Check(role Role, op Operation) error {
	for _, allowed := range policy[op] {
		if allowed == role {
			return nil
		}
	}
	if role == RoleAnonymous {
		return apperrors.ErrUnauthorized
	}
	return apperrors.ErrForbidden
}

// Allowed is Check as a boolean.
func Allowed(role Role, op Operation) bool {
	return Check(role, op) == nil
}
