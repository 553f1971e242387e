package authz

// Role hierarchy guards. Authority is expressed purely by role position
// (lower = stronger); names never enter the comparison. Both guards are
// pure predicates: the membership-mutation caller is responsible for
// turning false into a user-facing failure.

// CanManageMember reports whether the actor may manage (remove or change
// the role of) the target user's membership in the project:
//
//   - nobody manages their own membership, not even the project owner
//   - system administrators manage anyone
//   - otherwise the actor needs members.manage or members.admin, and a
//     role strictly more authoritative than the target's; users without a
//     membership have no position and can neither manage nor be managed
//
// Equal positions cannot manage each other: strict comparison is the safe
// default when a buggy reorder leaves two roles at the same rank.
func (s *Service) CanManageMember(actorUserID, targetUserID, projectID uint) (bool, error) {
	if actorUserID == targetUserID {
		return false, nil
	}

	isAdmin, err := s.store.IsSystemAdmin(actorUserID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	actor, err := s.store.FindMembership(actorUserID, projectID)
	if err != nil {
		return false, err
	}
	if actor == nil || actor.Role == nil {
		return false, nil
	}
	if !actor.Role.Permissions.Contains(string(PermMembersManage)) &&
		!actor.Role.Permissions.Contains(string(PermMembersAdmin)) {
		return false, nil
	}

	target, err := s.store.FindMembership(targetUserID, projectID)
	if err != nil {
		return false, err
	}
	if target == nil || target.Role == nil {
		return false, nil
	}

	return actor.Role.Position < target.Role.Position, nil
}

// CanAssignRole reports whether the actor may grant the given role to a
// member of the project. The role must be strictly less authoritative than
// the actor's own: an actor can never mint a peer or a superior, which
// also keeps Admins from creating new Owners. System administrators may
// assign any role.
func (s *Service) CanAssignRole(actorUserID, projectID, roleID uint) (bool, error) {
	isAdmin, err := s.store.IsSystemAdmin(actorUserID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	actor, err := s.store.FindMembership(actorUserID, projectID)
	if err != nil {
		return false, err
	}
	if actor == nil || actor.Role == nil {
		return false, nil
	}
	if !actor.Role.Permissions.Contains(string(PermMembersManage)) &&
		!actor.Role.Permissions.Contains(string(PermMembersAdmin)) {
		return false, nil
	}

	roles, err := s.store.ListRoles(projectID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role.Position > actor.Role.Position, nil
		}
	}
	// Role does not exist in this project.
	return false, nil
}
