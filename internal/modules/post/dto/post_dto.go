package dto

import (
	"io"

	"anoa.com/minimalblog/internal/entity"
)

// PostForm backs both the new-post and edit-post forms. Cover, when present,
// is uploaded and replaces ImgURL.
type PostForm struct {
	Title    string `form:"title" binding:"required,max=250"`
	Subtitle string `form:"subtitle" binding:"required,max=250"`
	ImgURL   string `form:"img_url" binding:"required_without=HasCover,omitempty,url,max=250"`
	Body     string `form:"body" binding:"required"`
	HasCover bool   `form:"-"`
}

// CoverFile is an uploaded cover image.
type CoverFile struct {
	Reader   io.Reader
	FileName string
}

type CommentForm struct {
	Text string `form:"comment_text" binding:"required"`
}

// PostPage is everything the post view needs.
type PostPage struct {
	Post     *entity.BlogPost
	Comments []*entity.Comment
}

func FormFromPost(post *entity.BlogPost) PostForm {
	return PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
}
