package authz

// Two ownership policies coexist on purpose.
//
// Tickets use an explicit "own" permission: editing your own ticket still
// requires tickets.manage_own (every built-in role grants it, but a custom
// role can take it away). Comments and attachments use implicit
// self-ownership: authors can always edit or delete their own, with no
// permission check at all. Reimplementations must keep this asymmetry.

// RequireResourcePermission enforces the explicit-own policy:
// allow when the effective set holds anyPerm, or when the acting user owns
// the resource and holds ownPerm. System administrators always pass.
func (s *Service) RequireResourcePermission(userID, projectID, resourceOwnerID uint, ownPerm, anyPerm Permission) error {
	set, err := s.Resolve(userID, projectID)
	if err != nil {
		return err
	}
	if set.IsSystemAdmin {
		return nil
	}
	if set.Has(anyPerm) {
		return nil
	}
	if resourceOwnerID == userID && set.Has(ownPerm) {
		return nil
	}
	if resourceOwnerID == userID {
		return newMissingPermission(ownPerm)
	}
	return newMissingPermission(anyPerm)
}

// RequireTicketPermission guards ticket mutations.
func (s *Service) RequireTicketPermission(userID, projectID, ticketAuthorID uint) error {
	return s.RequireResourcePermission(userID, projectID, ticketAuthorID,
		PermTicketsManageOwn, PermTicketsManageAny)
}

// requireOwnOrManageAny enforces the implicit self-ownership policy:
// the resource owner always passes, everyone else needs anyPerm (or
// system-admin status).
func (s *Service) requireOwnOrManageAny(userID, projectID, resourceOwnerID uint, anyPerm Permission) error {
	if resourceOwnerID == userID {
		return nil
	}
	set, err := s.Resolve(userID, projectID)
	if err != nil {
		return err
	}
	if set.IsSystemAdmin || set.Has(anyPerm) {
		return nil
	}
	return newMissingPermission(anyPerm)
}

// RequireCommentPermission guards comment edits and deletions. Authors may
// always manage their own comments regardless of role.
func (s *Service) RequireCommentPermission(userID, projectID, commentAuthorID uint) error {
	return s.requireOwnOrManageAny(userID, projectID, commentAuthorID, PermCommentsManageAny)
}

// RequireAttachmentPermission guards attachment deletions. Uploaders may
// always remove their own attachments regardless of role.
func (s *Service) RequireAttachmentPermission(userID, projectID, uploaderID uint) error {
	return s.requireOwnOrManageAny(userID, projectID, uploaderID, PermAttachmentsManageAny)
}
