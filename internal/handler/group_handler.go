package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/service"
)

type GroupHandler struct {
	svc *service.GroupService
}

func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// List shows every group
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	html(c, http.StatusOK, "groups.html", gin.H{"groups": groups})
}
