// Package policy holds the authorization rules shared by middleware and
// services.
package policy

import (
	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
)

// RequireAdmin permits only the administrator. Anonymous principals are
// forbidden rather than asked to authenticate.
func RequireAdmin(principal *entity.User) error {
	if principal == nil || !principal.IsAdmin {
		return apperror.ErrForbidden
	}
	return nil
}

// RequireUser permits any authenticated principal.
func RequireUser(principal *entity.User) error {
	if principal == nil {
		return apperror.ErrUnauthorized
	}
	return nil
}
