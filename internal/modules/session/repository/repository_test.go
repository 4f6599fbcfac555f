package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/testutil"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStore(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user := &entity.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)

	store := NewGormStore(db)

	session := &entity.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, session))
	require.NotEmpty(t, session.ID)

	found, err := store.Find(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Find(ctx, session.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// deleting twice is harmless
	assert.NoError(t, store.Delete(ctx, session.ID))
}

func TestGormStore_Expired(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user := &entity.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)

	store := NewGormStore(db)
	session := &entity.Session{UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, session))

	_, err := store.Find(ctx, session.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGormStore_SavePurgesExpired(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user := &entity.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)

	store := NewGormStore(db)
	stale := &entity.Session{UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, stale))

	fresh := &entity.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, fresh))

	var ids []string
	require.NoError(t, db.Model(&entity.Session{}).Pluck("id", &ids).Error)
	assert.Equal(t, []string{fresh.ID}, ids)
}
