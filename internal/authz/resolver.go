package authz

// EffectiveSet is the result of resolving a (user, project) pair: the
// permissions actually granted to the user in the project after folding in
// membership and the system-admin override. It is derived, never stored.
type EffectiveSet struct {
	perms         map[Permission]struct{}
	IsSystemAdmin bool
}

func newEffectiveSet(perms []Permission, isAdmin bool) *EffectiveSet {
	set := &EffectiveSet{
		perms:         make(map[Permission]struct{}, len(perms)),
		IsSystemAdmin: isAdmin,
	}
	for _, p := range perms {
		set.perms[p] = struct{}{}
	}
	return set
}

// Has reports whether the set grants the given permission.
func (e *EffectiveSet) Has(perm Permission) bool {
	_, ok := e.perms[perm]
	return ok
}

// HasAny reports whether the set grants at least one of the given
// permissions. An empty argument list never matches.
func (e *EffectiveSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if e.Has(p) {
			return true
		}
	}
	return false
}

// Len returns the number of granted permissions.
func (e *EffectiveSet) Len() int { return len(e.perms) }

// Permissions returns the granted tags. Order is unspecified.
func (e *EffectiveSet) Permissions() []Permission {
	out := make([]Permission, 0, len(e.perms))
	for p := range e.perms {
		out = append(out, p)
	}
	return out
}

// Service is the authorization engine. Every access decision in the
// application routes through it, so the system-admin override exists in
// exactly one place: Resolve. The service holds no mutable state and is
// safe for concurrent use.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve computes the effective permission set for a user within a
// project. A system administrator holds a virtual membership with the
// maximal role on every project, whether or not a membership row exists;
// this is checked before any membership lookup. A user with no membership
// resolves to the empty set.
func (s *Service) Resolve(userID, projectID uint) (*EffectiveSet, error) {
	isAdmin, err := s.store.IsSystemAdmin(userID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return newEffectiveSet(AllPermissions, true), nil
	}

	member, err := s.store.FindMembership(userID, projectID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Role == nil {
		return newEffectiveSet(nil, false), nil
	}

	perms := make([]Permission, 0, len(member.Role.Permissions))
	for _, tag := range member.Role.Permissions {
		perms = append(perms, Permission(tag))
	}
	return newEffectiveSet(perms, false), nil
}

// IsSystemAdmin reports whether the user carries the global
// administrator flag.
func (s *Service) IsSystemAdmin(userID uint) (bool, error) {
	return s.store.IsSystemAdmin(userID)
}

// IsMember reports whether the user belongs to the project. System
// administrators are members of every project.
func (s *Service) IsMember(userID, projectID uint) (bool, error) {
	isAdmin, err := s.store.IsSystemAdmin(userID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	member, err := s.store.FindMembership(userID, projectID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}
