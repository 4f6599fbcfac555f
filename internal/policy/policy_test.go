package policy

import (
	"testing"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), apperror.ErrForbidden)
	assert.ErrorIs(t, RequireAdmin(&entity.User{ID: 2}), apperror.ErrForbidden)
	assert.NoError(t, RequireAdmin(&entity.User{ID: 1, IsAdmin: true}))
}

func TestRequireUser(t *testing.T) {
	assert.ErrorIs(t, RequireUser(nil), apperror.ErrUnauthorized)
	assert.NoError(t, RequireUser(&entity.User{ID: 2}))
}
