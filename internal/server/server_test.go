package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/minimalblog/internal/config"
	"anoa.com/minimalblog/internal/entity"
	"anoa.com/minimalblog/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu   sync.Mutex
	view string
	data gin.H
}

func (r *recordingRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	r.mu.Lock()
	r.view, r.data = view, data
	r.mu.Unlock()

	flashes, _ := data["flashes"].([]string)
	c.String(status, view+"\n"+strings.Join(flashes, "\n"))
}

func (r *recordingRenderer) last() gin.H {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "development",
		AllowedOrigins:     []string{"http://localhost:5000"},
		SecretKey:          "test-secret",
		SessionTTL:         time.Hour,
		PasswordIterations: 1000,
	}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func postForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://images.example/cover.jpg"},
		"body":     {"<p>Hello</p>"},
	}
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := func() time.Time { return time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithClock(clock)}, opts...)

	srv, err := NewServer(testConfig(), testutil.NewDB(t), nil, opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestBlogScenario(t *testing.T) {
	renderer := &recordingRenderer{}
	ts := newTestServer(t, WithRenderer(renderer))

	admin := newBrowser(t, ts.URL)
	reader := newBrowser(t, ts.URL)
	visitor := newBrowser(t, ts.URL)

	status, _, body := visitor.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "index"))

	// the first account becomes the administrator
	status, location, _ := admin.post("/register", url.Values{"name": {"Admin"}, "email": {"admin@x.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, body = admin.get("/new-post")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "make-post"))

	status, location, _ = admin.post("/new-post", postForm("First Post"))
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, location, _ = admin.post("/new-post", postForm("First Post"))
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/new-post", location)
	_, _, body = admin.get("/new-post")
	assert.Contains(t, body, "A post with that title already exists.")

	status, _, _ = admin.get("/")
	require.Equal(t, http.StatusOK, status)
	posts := renderer.last()["posts"].([]*entity.BlogPost)
	require.Len(t, posts, 1)
	post := posts[0]
	assert.Equal(t, "April 02, 2024", post.Date)
	postPath := fmt.Sprintf("/post/%d", post.ID)

	// anonymous visitors may read but not comment
	status, _, body = visitor.get(postPath)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "post"))

	status, location, _ = visitor.post(postPath, url.Values{"comment_text": {"hi"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
	_, _, body = visitor.get("/login")
	assert.Contains(t, body, "You need to login or register to comment.")

	status, _, body = visitor.get("/new-post")
	assert.Equal(t, http.StatusForbidden, status)
	assert.True(t, strings.HasPrefix(body, "error"))

	status, location, _ = reader.post("/register", url.Values{"name": {"Reader"}, "email": {"reader@x.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, _ = reader.post(postPath, url.Values{"comment_text": {"Nice post"}})
	require.Equal(t, http.StatusOK, status)
	comments := renderer.last()["comments"].([]*entity.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice post", comments[0].Text)
	assert.Equal(t, "Reader", comments[0].Author.Name)

	status, _, _ = reader.post(postPath, url.Values{"comment_text": {""}})
	assert.Equal(t, http.StatusBadRequest, status)

	// the reader is not the administrator
	status, _, _ = reader.post("/new-post", postForm("Sneaky"))
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = reader.get(fmt.Sprintf("/edit-post/%d", post.ID))
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = reader.post(fmt.Sprintf("/delete/%d", post.ID), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = reader.get(fmt.Sprintf("/delete/%d", post.ID))
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	status, _, _ = reader.post(fmt.Sprintf("/edit-post/%d", post.ID), postForm("Hijacked"))
	assert.Equal(t, http.StatusForbidden, status)

	// refused writes leave the post as it was
	status, _, _ = visitor.get(postPath)
	require.Equal(t, http.StatusOK, status)
	unchanged := renderer.last()["post"].(*entity.BlogPost)
	assert.Equal(t, "First Post", unchanged.Title)
	assert.Equal(t, "A subtitle", unchanged.Subtitle)

	// edit keeps the date and redirects to the post
	edit := postForm("First Post, revised")
	status, location, _ = admin.post(fmt.Sprintf("/edit-post/%d", post.ID), edit)
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, postPath, location)

	status, _, _ = admin.get(fmt.Sprintf("/edit-post/%d", post.ID))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, renderer.last()["is_edit"])

	status, _, _ = admin.get("/edit-post/999")
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = admin.post("/edit-post/999", url.Values{"title": {""}})
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = visitor.get("/search?q=revised")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, renderer.last()["posts"], 1)

	status, _, _ = admin.post("/new-post", postForm("Second Post"))
	require.Equal(t, http.StatusSeeOther, status)

	status, location, _ = admin.post(fmt.Sprintf("/delete/%d", post.ID), nil)
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, _ = visitor.get(postPath)
	assert.Equal(t, http.StatusNotFound, status)
	status, _, _ = admin.post(fmt.Sprintf("/delete/%d", post.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	// deleting one post, twice, leaves the others alone
	status, _, _ = visitor.get("/")
	require.Equal(t, http.StatusOK, status)
	remaining := renderer.last()["posts"].([]*entity.BlogPost)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Second Post", remaining[0].Title)
}

func TestLoginLogout(t *testing.T) {
	ts := newTestServer(t, WithRenderer(&recordingRenderer{}))
	b := newBrowser(t, ts.URL)

	status, _, _ := b.post("/register", url.Values{"name": {"Ann"}, "email": {"ann@x.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, status)

	status, location, _ := b.post("/register", url.Values{"name": {"Ann"}, "email": {"ann@x.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
	_, _, body := b.get("/login")
	assert.Contains(t, body, "You've already signed up with that email, log in instead!")

	status, location, _ = b.get("/logout")
	require.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/", location)

	status, _, _ = b.get("/new-post")
	assert.Equal(t, http.StatusForbidden, status)

	status, location, _ = b.post("/login", url.Values{"email": {"nobody@x.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
	_, _, body = b.get("/login")
	assert.Contains(t, body, "That email does not exist, please try again.")

	status, location, _ = b.post("/login", url.Values{"email": {"ann@x.com"}, "password": {"wrong"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)
	_, _, body = b.get("/login")
	assert.Contains(t, body, "Password incorrect, please try again.")

	status, _, _ = b.post("/login", url.Values{"email": {"not-an-email"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, location, _ = b.post("/login", url.Values{"email": {"ann@x.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, _ = b.get("/new-post")
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = b.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, status)

	status, _, _ = b.get("/new-post")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRegister_InvalidForm(t *testing.T) {
	renderer := &recordingRenderer{}
	ts := newTestServer(t, WithRenderer(renderer))
	b := newBrowser(t, ts.URL)

	status, _, body := b.post("/register", url.Values{"name": {""}, "email": {"bad"}, "password": {""}})
	require.Equal(t, http.StatusBadRequest, status)
	assert.True(t, strings.HasPrefix(body, "register"))

	fields := renderer.last()["errors"].(map[string]string)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "name")
}

func TestEmbeddedTemplates(t *testing.T) {
	ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	for _, path := range []string{"/", "/register", "/login", "/about", "/contact", "/search?q=go"} {
		status, _, body := b.get(path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Contains(t, body, "</html>", path)
	}

	status, _, _ := b.post("/register", url.Values{"name": {"Admin"}, "email": {"admin@x.com"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, status)

	status, _, _ = b.post("/new-post", postForm("Templated"))
	require.Equal(t, http.StatusSeeOther, status)

	status, _, body := b.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Templated")
	assert.Contains(t, body, `<p class="post-excerpt">Hello</p>`)
	assert.Contains(t, body, "Create New Post")

	status, _, _ = b.post("/post/1", url.Values{"comment_text": {"<b>first!</b>"}})
	require.Equal(t, http.StatusOK, status)

	status, _, body = b.get("/post/1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<p>Hello</p>")
	assert.Contains(t, body, "<b>first!</b>")
	assert.Contains(t, body, "gravatar.com/avatar/")

	status, _, body = b.get("/edit-post/1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/edit-post/1"`)

	status, _, body = b.get("/post/999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "<h1>404</h1>")

	status, _, _ = b.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, status)
}
