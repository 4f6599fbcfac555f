package handler

import (
	"net/http"
	"strings"

	search "anoa.com/minimalblog/internal/modules/search/service"
	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchFilter struct {
	Query string `form:"q" binding:"max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type SearchHandler struct {
	service  search.SearchService
	renderer render.Renderer
}

func NewSearchHandler(service search.SearchService, renderer render.Renderer) *SearchHandler {
	return &SearchHandler{service: service, renderer: renderer}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var filter SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = SearchFilter{Query: c.Query("q")}
	}
	if filter.Limit == 0 {
		filter.Limit = search.DefaultLimit
	}

	query := strings.TrimSpace(filter.Query)
	posts, err := h.service.Search(c.Request.Context(), query, filter.Limit)
	if err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	response.Render(c, h.renderer, http.StatusOK, "search", gin.H{
		"query": query,
		"posts": posts,
	})
}
