package authz

// HasPermission reports whether the user holds the given permission within
// the project. It never fails for missing users or memberships; the only
// possible error is a store failure.
func (s *Service) HasPermission(userID, projectID uint, perm Permission) (bool, error) {
	set, err := s.Resolve(userID, projectID)
	if err != nil {
		return false, err
	}
	return set.Has(perm), nil
}

// HasAnyPermission reports whether the user holds at least one of the
// given permissions within the project.
func (s *Service) HasAnyPermission(userID, projectID uint, perms ...Permission) (bool, error) {
	set, err := s.Resolve(userID, projectID)
	if err != nil {
		return false, err
	}
	return set.HasAny(perms...), nil
}

// RequirePermission returns a *ForbiddenError carrying the permission tag
// unless the user holds it.
func (s *Service) RequirePermission(userID, projectID uint, perm Permission) error {
	ok, err := s.HasPermission(userID, projectID, perm)
	if err != nil {
		return err
	}
	if !ok {
		return newMissingPermission(perm)
	}
	return nil
}

// RequireAnyPermission returns a *ForbiddenError unless the user holds at
// least one of the given permissions. The error carries the first tag as
// the representative missing permission.
func (s *Service) RequireAnyPermission(userID, projectID uint, perms ...Permission) error {
	ok, err := s.HasAnyPermission(userID, projectID, perms...)
	if err != nil {
		return err
	}
	if !ok {
		var perm Permission
		if len(perms) > 0 {
			perm = perms[0]
		}
		return newMissingPermission(perm)
	}
	return nil
}

// RequireMembership is the minimum gate for read access to project-scoped
// resources: it fails with not-a-member unless the user belongs to the
// project (or is a system administrator).
func (s *Service) RequireMembership(userID, projectID uint) error {
	ok, err := s.IsMember(userID, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return newNotAMember()
	}
	return nil
}
