package middleware

import (
	"net/http"
	"time"

	session "anoa.com/minimalblog/internal/modules/session/service"
	userRepo "anoa.com/minimalblog/internal/modules/user/repository"
	"anoa.com/minimalblog/internal/policy"
	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SessionCookie names the cookie carrying the signed session token.
const SessionCookie = "session"

type AuthMiddleware struct {
	sessions     session.Service
	userRepo     userRepo.UserRepository
	renderer     render.Renderer
	secureCookie bool
}

func NewAuthMiddleware(sessions session.Service, userRepo userRepo.UserRepository, renderer render.Renderer, secureCookie bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:     sessions,
		userRepo:     userRepo,
		renderer:     renderer,
		secureCookie: secureCookie,
	}
}

// LoadPrincipal resolves the session cookie to a user. Requests without a
// valid session continue anonymously.
func (m *AuthMiddleware) LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, ok := m.sessions.Resolve(c.Request.Context(), token)
		if !ok {
			m.ClearSession(c)
			c.Next()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("session user not loaded")
			m.ClearSession(c)
			c.Next()
			return
		}

		c.Set(response.PrincipalKey, user)
		c.Next()
	}
}

// RequireAdmin stops the request with the 403 error page unless the
// principal is the administrator.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireAdmin(response.GetPrincipal(c)); err != nil {
			response.ResponseError(c, m.renderer, err)
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) SetSession(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", m.secureCookie, true)
}

func (m *AuthMiddleware) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secureCookie, true)
}
