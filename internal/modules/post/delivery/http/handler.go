package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	commentService "anoa.com/minimalblog/internal/modules/comment/service"
	postDto "anoa.com/minimalblog/internal/modules/post/dto"
	postService "anoa.com/minimalblog/internal/modules/post/service"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/flash"
	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"anoa.com/minimalblog/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	msgLoginToComment = "You need to login or register to comment."
	msgTitleTaken     = "A post with that title already exists."
)

type PostHandler struct {
	posts    postService.PostService
	comments commentService.CommentService
	renderer render.Renderer
}

func NewPostHandler(posts postService.PostService, comments commentService.CommentService, renderer render.Renderer) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, renderer: renderer}
}

func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.posts.ListPosts(c.Request.Context())
	if err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	response.Render(c, h.renderer, http.StatusOK, "index", gin.H{"posts": posts})
}

func (h *PostHandler) ShowPost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	h.renderPost(c, id, http.StatusOK, postDto.CommentForm{}, nil)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	principal := response.GetPrincipal(c)
	if principal == nil {
		flash.Add(c, msgLoginToComment)
		response.Redirect(c, "/login")
		return
	}

	var req postDto.CommentForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderPost(c, id, http.StatusBadRequest, req, validator.FieldErrors(err))
		return
	}

	if _, err := h.comments.AddComment(c.Request.Context(), principal, id, req.Text); err != nil {
		var verr *apperror.ValidationError
		if errors.As(err, &verr) {
			h.renderPost(c, id, http.StatusBadRequest, req, verr.Fields)
			return
		}
		response.ResponseError(c, h.renderer, err)
		return
	}

	h.renderPost(c, id, http.StatusOK, postDto.CommentForm{}, nil)
}

func (h *PostHandler) NewPostForm(c *gin.Context) {
	response.Render(c, h.renderer, http.StatusOK, "make-post", gin.H{
		"form":    postDto.PostForm{},
		"is_edit": false,
	})
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	req, cover, ok := h.bindPostForm(c, gin.H{"is_edit": false})
	if !ok {
		return
	}
	defer closeCover(cover)

	_, err := h.posts.CreatePost(c.Request.Context(), response.GetPrincipal(c), req, cover)
	if err != nil {
		h.postWriteError(c, err, req, gin.H{"is_edit": false}, "/new-post")
		return
	}

	response.Redirect(c, "/")
}

func (h *PostHandler) EditPostForm(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	page, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	response.Render(c, h.renderer, http.StatusOK, "make-post", gin.H{
		"form":    postDto.FormFromPost(page.Post),
		"is_edit": true,
		"post_id": id,
	})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if _, err := h.posts.GetPost(c.Request.Context(), id); err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	extra := gin.H{"is_edit": true, "post_id": id}
	req, cover, ok := h.bindPostForm(c, extra)
	if !ok {
		return
	}
	defer closeCover(cover)

	_, err := h.posts.UpdatePost(c.Request.Context(), response.GetPrincipal(c), id, req, cover)
	if err != nil {
		h.postWriteError(c, err, req, extra, fmt.Sprintf("/edit-post/%d", id))
		return
	}

	response.Redirect(c, fmt.Sprintf("/post/%d", id))
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), response.GetPrincipal(c), id); err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	response.Redirect(c, "/")
}

func (h *PostHandler) renderPost(c *gin.Context, id uint, status int, form postDto.CommentForm, fields map[string]string) {
	page, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, h.renderer, err)
		return
	}

	response.Render(c, h.renderer, status, "post", gin.H{
		"post":     page.Post,
		"comments": page.Comments,
		"form":     form,
		"errors":   fields,
	})
}

// bindPostForm binds the post form and opens the optional cover upload. On
// failure it has already answered the request. Callers close the returned
// cover with closeCover.
func (h *PostHandler) bindPostForm(c *gin.Context, extra gin.H) (postDto.PostForm, *postDto.CoverFile, bool) {
	var req postDto.PostForm
	var cover *postDto.CoverFile

	if header, err := c.FormFile("cover"); err == nil {
		file, err := header.Open()
		if err != nil {
			response.ResponseError(c, h.renderer, err)
			return req, nil, false
		}

		req.HasCover = true
		cover = &postDto.CoverFile{Reader: file, FileName: header.Filename}
	}

	if err := c.ShouldBind(&req); err != nil {
		closeCover(cover)
		h.rerenderPostForm(c, req, extra, validator.FieldErrors(err))
		return req, nil, false
	}

	return req, cover, true
}

func closeCover(cover *postDto.CoverFile) {
	if cover == nil {
		return
	}
	if closer, ok := cover.Reader.(io.Closer); ok {
		_ = closer.Close()
	}
}

func (h *PostHandler) postWriteError(c *gin.Context, err error, req postDto.PostForm, extra gin.H, back string) {
	var verr *apperror.ValidationError
	switch {
	case errors.As(err, &verr):
		h.rerenderPostForm(c, req, extra, verr.Fields)
	case errors.Is(err, apperror.ErrConflict):
		flash.Add(c, msgTitleTaken)
		response.Redirect(c, back)
	default:
		response.ResponseError(c, h.renderer, err)
	}
}

func (h *PostHandler) rerenderPostForm(c *gin.Context, req postDto.PostForm, extra gin.H, fields map[string]string) {
	data := gin.H{"form": req, "errors": fields}
	for k, v := range extra {
		data[k] = v
	}
	response.Render(c, h.renderer, http.StatusBadRequest, "make-post", data)
}

// postID parses the :id route parameter. Ids that cannot name a post are
// answered with 404.
func (h *PostHandler) postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, h.renderer, fmt.Errorf("post %q: %w", c.Param("id"), apperror.ErrNotFound))
		return 0, false
	}
	return uint(id), true
}
