package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yatube/internal/form"
	"yatube/internal/middleware"
	"yatube/internal/service"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// Index lists every post, newest first
func (h *PostHandler) Index(c *gin.Context) {
	feed, err := h.svc.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "index.html", gin.H{"feed": feed})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, feed, err := h.svc.GroupFeed(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "group_list.html", gin.H{"group": group, "feed": feed})
}

func (h *PostHandler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), c.Param("username"), middleware.UserID(c), c.Query("page"))
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "profile.html", gin.H{"profile": profile})
}

// FollowIndex lists posts by authors the viewer follows
func (h *PostHandler) FollowIndex(c *gin.Context) {
	feed, err := h.svc.FollowFeed(c.Request.Context(), middleware.UserID(c), c.Query("page"))
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "follow.html", gin.H{"feed": feed})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	detail, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "post_detail.html", gin.H{"detail": detail})
}

func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderPostForm(c, http.StatusOK, &form.PostForm{}, nil, 0)
}

// Create stores a post owned by the viewer
func (h *PostHandler) Create(c *gin.Context) {
	var f form.PostForm
	if err := c.ShouldBind(&f); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	image, closeImage, err := uploadedImage(c)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	defer closeImage()

	user, _ := middleware.CurrentUser(c)
	_, errs, err := h.svc.Create(c.Request.Context(), user.ID, &f, image)
	if err != nil {
		renderError(c, err)
		return
	}
	if errs != nil {
		h.renderPostForm(c, http.StatusOK, &f, errs, 0)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// EditForm is only shown to the author
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	if post.AuthorID != middleware.UserID(c) {
		c.Redirect(http.StatusFound, detailURL(id))
		return
	}
	f := &form.PostForm{Text: post.Text}
	if post.GroupID != nil {
		f.Group = strconv.FormatUint(*post.GroupID, 10)
	}
	h.renderPostForm(c, http.StatusOK, f, nil, id)
}

func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	var f form.PostForm
	if err := c.ShouldBind(&f); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	image, closeImage, err := uploadedImage(c)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	defer closeImage()

	_, errs, err := h.svc.Edit(c.Request.Context(), middleware.UserID(c), id, &f, image)
	switch {
	case errors.Is(err, service.ErrNotAuthor):
		c.Redirect(http.StatusFound, detailURL(id))
		return
	case err != nil:
		renderError(c, err)
		return
	case errs != nil:
		h.renderPostForm(c, http.StatusOK, &f, errs, id)
		return
	}
	c.Redirect(http.StatusFound, detailURL(id))
}

// AddComment always lands on the detail page; invalid text is dropped
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	var f form.CommentForm
	if c.Request.Method == http.MethodPost {
		_ = c.ShouldBind(&f)
	}
	_, _, err := h.svc.AddComment(c.Request.Context(), middleware.UserID(c), id, &f)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailURL(id))
}

func (h *PostHandler) renderPostForm(c *gin.Context, status int, f *form.PostForm, errs form.Errors, postID uint64) {
	groups, err := h.svc.Groups(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, status, "create_post.html", gin.H{
		"form":    f,
		"errors":  errs,
		"groups":  groups,
		"is_edit": postID != 0,
		"post_id": postID,
	})
}

// uploadedImage returns the optional "image" part. The close func is always safe to call.
func uploadedImage(c *gin.Context) (io.Reader, func(), error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	if header.Size == 0 {
		return nil, func() {}, nil
	}
	var file multipart.File
	if file, err = header.Open(); err != nil {
		return nil, func() {}, err
	}
	return file, func() { _ = file.Close() }, nil
}

func detailURL(id uint64) string {
	return "/posts/" + strconv.FormatUint(id, 10) + "/"
}
