package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/middleware"
	"yatube/internal/service"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// Follow subscribes the viewer to the profile's author
func (h *FollowHandler) Follow(c *gin.Context) {
	if err := h.svc.Follow(c.Request.Context(), middleware.UserID(c), c.Param("username")); err != nil {
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/follow/")
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	if err := h.svc.Unfollow(c.Request.Context(), middleware.UserID(c), c.Param("username")); err != nil {
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/follow/")
}
