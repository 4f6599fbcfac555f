package handler

import (
	"net/http"

	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the static pages.
type PageHandler struct {
	renderer render.Renderer
}

func NewPageHandler(renderer render.Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

func (h *PageHandler) About(c *gin.Context) {
	response.Render(c, h.renderer, http.StatusOK, "about", nil)
}

func (h *PageHandler) Contact(c *gin.Context) {
	response.Render(c, h.renderer, http.StatusOK, "contact", nil)
}
