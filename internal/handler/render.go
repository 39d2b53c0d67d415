package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/base.html"

// Renderer keeps one template set per page, each parsed on top of the layout
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page template. imageURL resolves stored image keys.
func NewRenderer(imageURL func(key string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"image":    imageURL,
		"date":     func(t time.Time) string { return t.Format("02 Jan 2006") },
		"truncate": truncate,
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		if file == layout {
			continue
		}
		name := path.Base(file)
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layout, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic("handler: unknown template " + name)
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// html renders a page and exposes the viewer to the layout
func html(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.CurrentUser(c); ok {
		data["viewer"] = user
	}
	c.HTML(status, name, data)
}

// NotFound renders the 404 page; also used as the NoRoute handler
func NotFound(c *gin.Context) {
	html(c, http.StatusNotFound, "404.html", gin.H{"path": c.Request.URL.Path})
}

func renderError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrNotFound) {
		NotFound(c)
		return
	}
	logging.WithRequestID(c.GetString(middleware.ContextRequestIDKey)).Error("request failed",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
	html(c, http.StatusInternalServerError, "500.html", nil)
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
