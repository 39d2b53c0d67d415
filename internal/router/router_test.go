package router_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/app"
	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/repository"
	"yatube/internal/router"
	"yatube/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	stores *app.Stores
	svc    *app.Services
	engine *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{PostsPerPage: 10, BaseURL: "http://localhost:8080"},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			Secret:     "test-secret",
			TokenTTL:   time.Hour,
			MaxAge:     2 * time.Hour,
			CookieName: "yatube_session",
			LoginURL:   "/auth/login/",
		},
		Cache:     config.CacheConfig{IndexTTL: 20 * time.Second, Size: 64},
		Storage:   config.StorageConfig{Backend: "local", Dir: t.TempDir(), MediaURL: "/media/"},
		Telemetry: config.TelemetryConfig{ServiceName: "yatube"},
	}
	stores, err := app.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	svc := app.NewServices(cfg, stores)
	engine, err := router.New(app.RouterDeps(cfg, stores, svc))
	require.NoError(t, err)
	return &env{stores: stores, svc: svc, engine: engine}
}

func (e *env) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *env) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (e *env) post(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookie)
}

// signup registers username and returns a live session cookie
func (e *env) signup(t *testing.T, username string) (*model.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	user, errs, err := e.svc.Users.Signup(ctx, &form.SignupForm{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.Nil(t, errs)
	token, err := e.svc.Users.StartSession(ctx, user.ID)
	require.NoError(t, err)
	return user, &http.Cookie{Name: "yatube_session", Value: token}
}

func (e *env) group(t *testing.T, slug string) *model.Group {
	t.Helper()
	g, errs, err := e.svc.Groups.Create(context.Background(), &form.GroupForm{Title: "Group " + slug, Slug: slug, Description: "about " + slug})
	require.NoError(t, err)
	require.Nil(t, errs)
	return g
}

func (e *env) createPost(t *testing.T, author *model.User, text string, groupID *uint64) *model.Post {
	t.Helper()
	f := &form.PostForm{Text: text}
	if groupID != nil {
		f.Group = fmt.Sprint(*groupID)
	}
	p, errs, err := e.svc.Posts.Create(context.Background(), author.ID, f, nil)
	require.NoError(t, err)
	require.Nil(t, errs)
	return p
}

func (e *env) countPosts(t *testing.T) int64 {
	t.Helper()
	n, err := e.stores.Posts.Count(context.Background(), repository.PostFilter{})
	require.NoError(t, err)
	return n
}

func TestLoginRequiredRedirects(t *testing.T) {
	e := newEnv(t)
	author, _ := e.signup(t, "leo")
	p := e.createPost(t, author, "text", nil)

	paths := []string{
		"/create/",
		fmt.Sprintf("/posts/%d/edit/", p.ID),
		fmt.Sprintf("/posts/%d/comment/", p.ID),
		"/profile/leo/follow/",
		"/profile/leo/unfollow/",
		"/follow/",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := e.get(path, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/auth/login/?next="+path, w.Header().Get("Location"))
		})
	}

	w := e.post("/create/", url.Values{"text": {"anon"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, e.countPosts(t))
}

func TestPublicPages(t *testing.T) {
	e := newEnv(t)
	author, _ := e.signup(t, "leo")
	g := e.group(t, "cats")
	p := e.createPost(t, author, "Cats are liquid", &g.ID)

	for _, path := range []string{"/", "/groups/", "/group/cats/", "/profile/leo/", fmt.Sprintf("/posts/%d/", p.ID), "/auth/login/", "/auth/signup/"} {
		t.Run(path, func(t *testing.T) {
			w := e.get(path, nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		})
	}

	w := e.get("/group/cats/", nil)
	assert.Contains(t, w.Body.String(), "Cats are liquid")
	assert.Contains(t, w.Body.String(), "Group cats")
}

func TestNotFound(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/posts/999/", "/posts/abc/", "/group/missing/", "/profile/nobody/", "/no/such/page/"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, e.get(path, nil).Code)
		})
	}

	_, cookie := e.signup(t, "leo")
	assert.Equal(t, http.StatusNotFound, e.get("/profile/nobody/follow/", cookie).Code)
	assert.Equal(t, http.StatusNotFound, e.get("/posts/999/edit/", cookie).Code)
	assert.Equal(t, http.StatusNotFound, e.post("/posts/999/comment/", url.Values{"text": {"hi"}}, cookie).Code)
}

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	user, cookie := e.signup(t, "leo")
	other, _ := e.signup(t, "max")
	g := e.group(t, "cats")

	w := e.post("/create/", url.Values{
		"text":      {"Hello"},
		"group":     {fmt.Sprint(g.ID)},
		"author":    {fmt.Sprint(other.ID)},
		"author_id": {fmt.Sprint(other.ID)},
	}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, e.countPosts(t))

	posts, err := e.stores.Posts.List(context.Background(), repository.PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, user.ID, posts[0].AuthorID)
	assert.NotEqual(t, other.ID, posts[0].AuthorID)
	assert.Equal(t, "Hello", posts[0].Text)
	require.NotNil(t, posts[0].GroupID)
	assert.Equal(t, g.ID, *posts[0].GroupID)
}

func TestCreatePostInvalid(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "leo")

	w := e.post("/create/", url.Values{"text": {"   "}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	for _, group := range []string{"42", "99999999999999999999", "-1"} {
		w = e.post("/create/", url.Values{"text": {"ok"}, "group": {group}}, cookie)
		assert.Equal(t, http.StatusOK, w.Code, group)
		assert.Contains(t, w.Body.String(), "Select a valid choice.", group)
	}
	assert.EqualValues(t, 0, e.countPosts(t))
}

func TestCreatePostWithImage(t *testing.T) {
	e := newEnv(t)
	_, cookie := e.signup(t, "leo")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "with a picture"))
	part, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = part.Write(gifBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := e.do(req, cookie)
	require.Equal(t, http.StatusFound, w.Code)

	posts, err := e.stores.Posts.List(context.Background(), repository.PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].Image)
	assert.True(t, strings.HasSuffix(posts[0].Image, ".gif"))

	detail := e.get(fmt.Sprintf("/posts/%d/", posts[0].ID), nil)
	assert.Contains(t, detail.Body.String(), "/media/"+posts[0].Image)

	media := e.get("/media/"+posts[0].Image, nil)
	require.Equal(t, http.StatusOK, media.Code)
	got, err := io.ReadAll(media.Body)
	require.NoError(t, err)
	assert.Equal(t, gifBytes, got)
}

func TestEditPost(t *testing.T) {
	e := newEnv(t)
	author, authorCookie := e.signup(t, "leo")
	_, otherCookie := e.signup(t, "max")
	p := e.createPost(t, author, "original", nil)
	editPath := fmt.Sprintf("/posts/%d/edit/", p.ID)
	detailPath := fmt.Sprintf("/posts/%d/", p.ID)

	t.Run("non-author is sent to detail", func(t *testing.T) {
		w := e.get(editPath, otherCookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		w = e.post(editPath, url.Values{"text": {"hijacked"}}, otherCookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		got, err := e.stores.Posts.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", got.Text)
	})

	t.Run("author edits in place", func(t *testing.T) {
		w := e.get(editPath, authorCookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "original")

		w = e.post(editPath, url.Values{"text": {"edited"}}, authorCookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailPath, w.Header().Get("Location"))

		got, err := e.stores.Posts.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Text)
		assert.EqualValues(t, 1, e.countPosts(t))
	})
}

func TestAddComment(t *testing.T) {
	e := newEnv(t)
	author, _ := e.signup(t, "leo")
	commenter, cookie := e.signup(t, "max")
	p := e.createPost(t, author, "post", nil)
	path := fmt.Sprintf("/posts/%d/comment/", p.ID)
	detail := fmt.Sprintf("/posts/%d/", p.ID)

	w := e.post(path, url.Values{"text": {"nice post"}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = e.post(path, url.Values{"text": {""}}, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	comments, err := e.stores.Comments.ListByPost(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, commenter.ID, comments[0].AuthorID)
	assert.Equal(t, "nice post", comments[0].Text)

	assert.Contains(t, e.get(detail, nil).Body.String(), "nice post")
}

func TestFollow(t *testing.T) {
	e := newEnv(t)
	reader, cookie := e.signup(t, "leo")
	author, _ := e.signup(t, "max")
	e.createPost(t, author, "from max", nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		w := e.get("/profile/max/follow/", cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/follow/", w.Header().Get("Location"))
	}
	ok, err := e.stores.Follows.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	w := e.get("/follow/", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "from max")

	// self-follow is ignored
	e.get("/profile/leo/follow/", cookie)
	ok, err = e.stores.Follows.IsFollowing(ctx, reader.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// a single unfollow clears the pair, so the repeated follow left one row
	w = e.get("/profile/max/unfollow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	ok, err = e.stores.Follows.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, e.get("/follow/", cookie).Body.String(), "from max")

	w = e.get("/profile/max/unfollow/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))
}

func TestPagination(t *testing.T) {
	e := newEnv(t)
	author, _ := e.signup(t, "leo")
	for i := 0; i < 13; i++ {
		e.createPost(t, author, fmt.Sprintf("post number %d", i), nil)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"?page=1", 10},
		{"?page=2", 3},
		{"?page=abc", 10},
		{"?page=99", 3},
	}
	for _, tt := range tests {
		t.Run("profile"+tt.query, func(t *testing.T) {
			w := e.get("/profile/leo/"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, strings.Count(w.Body.String(), `class="post"`))
		})
	}

	w := e.get("/profile/leo/", nil)
	assert.Contains(t, w.Body.String(), "post number 12")
	assert.NotContains(t, w.Body.String(), "post number 2<")
}

func TestIndexCache(t *testing.T) {
	e := newEnv(t)
	author, cookie := e.signup(t, "leo")
	e.createPost(t, author, "first", nil)

	first := e.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Cache"))

	e.createPost(t, author, "second", nil)

	cached := e.get("/", nil)
	assert.Equal(t, "HIT", cached.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.Bytes(), cached.Body.Bytes())
	assert.NotContains(t, cached.Body.String(), "second")

	// signed in viewers bypass the cache
	assert.Contains(t, e.get("/", cookie).Body.String(), "second")

	require.NoError(t, e.stores.PageCache.Clear(context.Background()))
	fresh := e.get("/", nil)
	assert.NotEqual(t, first.Body.Bytes(), fresh.Body.Bytes())
	assert.Contains(t, fresh.Body.String(), "second")
}

func TestSignupLoginLogout(t *testing.T) {
	e := newEnv(t)

	w := e.post("/auth/signup/", url.Values{
		"username": {"leo"},
		"email":    {"leo@example.com"},
		"password": {"password123"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "yatube_session=")

	w = e.post("/auth/signup/", url.Values{
		"username": {"leo"},
		"email":    {"other@example.com"},
		"password": {"password123"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A user with that username already exists.")

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password.")

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"password123"}, "next": {"/follow/"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "yatube_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.StatusOK, e.get("/follow/", session).Code)

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"password123"}, "next": {"https://evil.example/"}}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == "yatube_session" {
			session = c
		}
	}

	w = e.get("/auth/logout/", session)
	assert.Equal(t, http.StatusFound, w.Code)
	w = e.get("/follow/", session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/follow/", w.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	w := e.get("/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","service":"yatube"}`, w.Body.String())
}

var gifBytes = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x21, 0xf9, 0x04, 0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x4c, 0x01, 0x00, 0x3b,
}
