package repository

import (
	"context"
	"testing"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/testutil"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	admin := &entity.User{Name: "Admin", Email: "admin@x.com", PasswordHash: "h", IsAdmin: true}
	reader := &entity.User{Name: "Reader", Email: "reader@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(reader).Error)

	post := &entity.BlogPost{AuthorID: admin.ID, Title: "T", Subtitle: "S", Date: "April 02, 2024", Body: "B", ImgURL: "U"}
	require.NoError(t, db.Create(post).Error)

	repo := NewCommentRepository(db)

	require.NoError(t, repo.Create(ctx, &entity.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "first"}))
	require.NoError(t, repo.Create(ctx, &entity.Comment{PostID: post.ID, AuthorID: admin.ID, Text: "second"}))

	comments, err := repo.FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "Reader", comments[0].Author.Name)
	assert.Equal(t, "second", comments[1].Text)

	mine, err := repo.FindByAuthorID(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, post.ID, mine[0].PostID)
}

func TestCommentRepository_MissingReferences(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	user := &entity.User{Name: "Reader", Email: "reader@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(user).Error)

	repo := NewCommentRepository(db)

	err := repo.Create(ctx, &entity.Comment{PostID: 404, AuthorID: user.ID, Text: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	post := &entity.BlogPost{AuthorID: user.ID, Title: "T", Subtitle: "S", Date: "d", Body: "B", ImgURL: "U"}
	require.NoError(t, db.Create(post).Error)

	err = repo.Create(ctx, &entity.Comment{PostID: post.ID, AuthorID: 404, Text: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	comments, err := repo.FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
