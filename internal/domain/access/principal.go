package access

// Principal is the caller of one request. The zero value is anonymous.
type Principal struct {
	UserID   uint
	Username string
	Staff    bool
}

// Anonymous returns an unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// Reader returns an authenticated non-staff principal.
func Reader(userID uint) Principal {
	return Principal{UserID: userID}
}

// StaffMember returns an authenticated staff principal.
func StaffMember(userID uint) Principal {
	return Principal{UserID: userID, Staff: true}
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

func (p Principal) Role() Role {
	switch {
	case !p.Authenticated():
		return RoleAnonymous
	case p.Staff:
		return RoleStaff
	default:
		return RoleReader
	}
}

// Authorize checks the principal's role against op.
func (p Principal) Authorize(op Operation) error {
	return Check(p.Role(), op)
}
