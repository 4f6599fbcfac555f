package response

import (
	"net/http"

	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/flash"
	"anoa.com/minimalblog/pkg/render"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PrincipalKey is the context key holding the authenticated *entity.User.
const PrincipalKey = "principal"

// GetPrincipal returns the authenticated user, or nil for anonymous requests.
func GetPrincipal(c *gin.Context) *entity.User {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	user, _ := v.(*entity.User)
	return user
}

// Render writes view with the data every page shares: the principal, whether
// it is the administrator, and pending flash messages.
func Render(c *gin.Context, r render.Renderer, status int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["errors"]; !ok {
		data["errors"] = map[string]string{}
	}

	principal := GetPrincipal(c)
	data["current_user"] = principal
	data["logged_in"] = principal != nil
	data["is_admin"] = principal != nil && principal.IsAdmin
	data["flashes"] = flash.Pop(c)

	r.Render(c, status, view, data)
}

// Redirect answers form submissions with 303 so the browser follows with GET.
func Redirect(c *gin.Context, location string) {
	status := http.StatusFound
	if c.Request.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	c.Redirect(status, location)
}

// ResponseError renders the error view with the status err maps to.
func ResponseError(c *gin.Context, r render.Renderer, err error) {
	code := apperror.MapErrorToStatus(err)

	message := http.StatusText(code)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}

	Render(c, r, code, "error", gin.H{
		"status":  code,
		"message": message,
	})
	c.Abort()
}
