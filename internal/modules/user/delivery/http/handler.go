package handler

import (
	"errors"
	"net/http"

	"anoa.com/minimalblog/internal/middleware"
	session "anoa.com/minimalblog/internal/modules/session/service"
	"anoa.com/minimalblog/internal/modules/user/dto"
	userService "anoa.com/minimalblog/internal/modules/user/service"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/flash"
	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"anoa.com/minimalblog/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	msgAlreadyRegistered = "You've already signed up with that email, log in instead!"
	msgUnknownEmail      = "That email does not exist, please try again."
	msgWrongPassword     = "Password incorrect, please try again."
)

type AuthHandler struct {
	service  userService.AuthService
	sessions session.Service
	auth     *middleware.AuthMiddleware
	renderer render.Renderer
}

func NewAuthHandler(service userService.AuthService, sessions session.Service, auth *middleware.AuthMiddleware, renderer render.Renderer) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		auth:     auth,
		renderer: renderer,
	}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	response.Render(c, h.renderer, http.StatusOK, "register", gin.H{"form": dto.RegisterInput{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		h.rerender(c, "register", req, validator.FieldErrors(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		var verr *apperror.ValidationError
		switch {
		case errors.Is(err, apperror.ErrConflict):
			flash.Add(c, msgAlreadyRegistered)
			response.Redirect(c, "/login")
		case errors.As(err, &verr):
			h.rerender(c, "register", req, verr.Fields)
		default:
			response.ResponseError(c, h.renderer, err)
		}
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	response.Redirect(c, "/")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.Render(c, h.renderer, http.StatusOK, "login", gin.H{"form": dto.LoginInput{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginInput
	if err := c.ShouldBind(&req); err != nil {
		h.rerender(c, "login", req, validator.FieldErrors(err))
		return
	}

	user, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, userService.ErrUnknownEmail):
			flash.Add(c, msgUnknownEmail)
			response.Redirect(c, "/login")
		case errors.Is(err, userService.ErrWrongPassword):
			flash.Add(c, msgWrongPassword)
			response.Redirect(c, "/login")
		default:
			response.ResponseError(c, h.renderer, err)
		}
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	response.Redirect(c, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.sessions.End(c.Request.Context(), token); err != nil {
			response.ResponseError(c, h.renderer, err)
			return
		}
	}

	h.auth.ClearSession(c)
	response.Redirect(c, "/")
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint) bool {
	token, expiresAt, err := h.sessions.Start(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.renderer, err)
		return false
	}
	h.auth.SetSession(c, token, expiresAt)
	return true
}

func (h *AuthHandler) rerender(c *gin.Context, view string, form any, fields map[string]string) {
	response.Render(c, h.renderer, http.StatusBadRequest, view, gin.H{
		"form":   form,
		"errors": fields,
	})
}
