package handlers

import (
	"net/http"

	"hypoforum/internal/services"
	"hypoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile 用户主页 GET /api/users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Me 当前用户 GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.users.Profile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ReputationLog 声望记录 GET /api/users/:id/reputation?page=&size=
func (h *UserHandler) ReputationLog(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	size := utils.StringToInt(c.DefaultQuery("size", "20"), 20)
	logs, total, err := h.users.ReputationLog(c.Request.Context(), id, page(c), size)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  page(c),
	})
}
