// Package render turns a view name and its data into an HTTP response.
package render

import (
	"html"
	"html/template"
	"io/fs"
	"strings"

	"anoa.com/minimalblog/pkg/gravatar"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var plain = bluemonday.StrictPolicy()

// Renderer writes view with data as the response body.
type Renderer interface {
	Render(c *gin.Context, status int, view string, data gin.H)
}

type htmlRenderer struct{}

// NewHTMLRenderer renders through the engine's HTML templates, which must
// have been installed with LoadTemplates.
func NewHTMLRenderer() Renderer {
	return htmlRenderer{}
}

func (htmlRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	c.HTML(status, view+".html", data)
}

// FuncMap holds the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"gravatar": func(email string) string {
			return gravatar.URL(email, gravatar.DefaultSize)
		},
		// safeHTML marks sanitized post and comment bodies as trusted markup.
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		// excerpt reduces a post body to at most n characters of plain text.
		"excerpt": func(s string, n int) string {
			s = strings.Join(strings.Fields(html.UnescapeString(plain.Sanitize(s))), " ")
			if len([]rune(s)) <= n {
				return s
			}
			return string([]rune(s)[:n]) + "…"
		},
	}
}

// LoadTemplates parses every *.html file in fsys.
func LoadTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(fsys, "*.html")
}
