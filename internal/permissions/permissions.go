// Package permissions contains the pure predicates gating write access.
// Every predicate is total over all actor shapes: a nil or anonymous
// user contributes false for every capability signal rather than an
// error, so callers never need to special-case unauthenticated requests.
package permissions

import (
	"net/http"

	"critichub/proj/internal/domain/models"
)

// IsSafeMethod reports whether the method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrReadOnly allows reads for anyone and mutations for admins.
// Used for category, genre and title write access.
func AdminOrReadOnly(actor *models.User, method string) bool {
	return IsSafeMethod(method) || actor.IsAdmin()
}

// AdminOnly allows nothing but admin actors. Used for account
// administration endpoints.
func AdminOnly(actor *models.User) bool {
	return actor.IsAdmin()
}

// AdminOnlyObject is the object-level form of AdminOnly: reads of an
// already-fetched object pass for anyone, everything else stays
// admin-gated.
func AdminOnlyObject(actor *models.User, method string) bool {
	return IsSafeMethod(method) || actor.IsAdmin()
}

// AuthorOrReadOnly allows reads for anyone and mutations only for the
// resource's author.
func AuthorOrReadOnly(actor *models.User, method string, authorID int64) bool {
	if IsSafeMethod(method) {
		return true
	}
	return !actor.IsAnonymous() && actor.ID == authorID
}

// ModeratorOrAuthorOrReadOnly is the request-level check for review and
// comment collections: reads pass for anyone, writes require any
// authenticated actor (object-level checks narrow it further).
func ModeratorOrAuthorOrReadOnly(actor *models.User, method string) bool {
	return IsSafeMethod(method) || !actor.IsAnonymous()
}

// ModeratorOrAuthorOrReadOnlyObject decides object-level access for a
// review or comment: reads pass, and mutations require the author, an
// admin signal, or the moderator role.
func ModeratorOrAuthorOrReadOnlyObject(actor *models.User, method string, authorID int64) bool {
	if IsSafeMethod(method) {
		return true
	}
	if actor.IsAnonymous() {
		return false
	}
	return actor.ID == authorID || actor.IsAdmin() || actor.IsModerator()
}
