package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/form"
	"yatube/internal/middleware"
	"yatube/internal/service"
	"yatube/pkg/logging"
)

// SessionCookie describes the cookie carrying the session token
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type UserHandler struct {
	svc    *service.UserService
	cookie SessionCookie
	log    *zap.Logger
}

func NewUserHandler(svc *service.UserService, cookie SessionCookie) *UserHandler {
	return &UserHandler{svc: svc, cookie: cookie, log: logging.WithComponent("user_handler")}
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	html(c, http.StatusOK, "signup.html", gin.H{"form": &form.SignupForm{}, "errors": form.Errors(nil)})
}

// Signup creates the account and logs the new user in
func (h *UserHandler) Signup(c *gin.Context) {
	var f form.SignupForm
	if err := c.ShouldBind(&f); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	user, errs, err := h.svc.Signup(c.Request.Context(), &f)
	if err != nil {
		renderError(c, err)
		return
	}
	if errs != nil {
		f.Password = ""
		html(c, http.StatusOK, "signup.html", gin.H{"form": &f, "errors": errs})
		return
	}
	token, err := h.svc.StartSession(c.Request.Context(), user.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	h.log.Info("user signed up", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	h.setCookie(c, token)
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	html(c, http.StatusOK, "login.html", gin.H{
		"form":   &form.LoginForm{},
		"errors": form.Errors(nil),
		"next":   c.Query("next"),
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var f form.LoginForm
	if err := c.ShouldBind(&f); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	data := gin.H{"form": &f, "next": f.Next}
	if errs := form.Validate(&f); errs != nil {
		data["errors"] = errs
		html(c, http.StatusOK, "login.html", data)
		return
	}
	token, _, err := h.svc.Login(c.Request.Context(), f.Username, f.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		data["errors"] = form.Errors(nil)
		data["error"] = "Please enter a correct username and password."
		html(c, http.StatusOK, "login.html", data)
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	h.setCookie(c, token)
	c.Redirect(http.StatusFound, safeNext(f.Next))
}

func (h *UserHandler) Logout(c *gin.Context) {
	if id := middleware.UserID(c); id != 0 {
		if err := h.svc.Logout(c.Request.Context(), id); err != nil {
			h.log.Warn("logout failed", zap.Uint64("user_id", id), zap.Error(err))
		}
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

// safeNext only follows local absolute paths
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
