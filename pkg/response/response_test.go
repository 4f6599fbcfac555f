package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	status int
	view   string
	data   gin.H
}

func (r *recordingRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	r.status, r.view, r.data = status, view, data
	c.Status(status)
}

func newContext(method string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/x", nil)
	return c, w
}

func TestGetPrincipal(t *testing.T) {
	c, _ := newContext(http.MethodGet)
	assert.Nil(t, GetPrincipal(c))

	user := &entity.User{ID: 1, IsAdmin: true}
	c.Set(PrincipalKey, user)
	assert.Same(t, user, GetPrincipal(c))
}

func TestRender_AddsSharedData(t *testing.T) {
	c, _ := newContext(http.MethodGet)
	c.Set(PrincipalKey, &entity.User{ID: 1, IsAdmin: true})

	r := &recordingRenderer{}
	Render(c, r, http.StatusOK, "index", gin.H{"posts": 3})

	assert.Equal(t, "index", r.view)
	assert.Equal(t, 3, r.data["posts"])
	assert.Equal(t, true, r.data["logged_in"])
	assert.Equal(t, true, r.data["is_admin"])
}

func TestRedirect(t *testing.T) {
	c, w := newContext(http.MethodPost)
	Redirect(c, "/")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	c, w = newContext(http.MethodGet)
	Redirect(c, "/")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("post 3: %w", apperror.ErrNotFound), http.StatusNotFound},
		{apperror.ErrForbidden, http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		c, _ := newContext(http.MethodGet)
		r := &recordingRenderer{}

		ResponseError(c, r, tt.err)

		require.Equal(t, "error", r.view)
		assert.Equal(t, tt.want, r.status)
		assert.Equal(t, tt.want, r.data["status"])
		assert.True(t, c.IsAborted())
	}
}
