package handlers

import (
	"net/http"

	"hypoforum/internal/models"
	"hypoforum/internal/services"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	threads *services.ThreadService
}

func NewThreadHandler(threads *services.ThreadService) *ThreadHandler {
	return &ThreadHandler{threads: threads}
}

type createThreadRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags" binding:"max=5,tags"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List 帖子列表 GET /api/threads?sort=hot&tag=&page=
func (h *ThreadHandler) List(c *gin.Context) {
	sort := services.ThreadSort(c.DefaultQuery("sort", string(services.SortHot)))
	threads, total, err := h.threads.List(c.Request.Context(), sort, c.Query("tag"), page(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	items := make([]ThreadView, 0, len(threads))
	for _, t := range threads {
		items = append(items, newThreadView(t, false))
	}
	c.JSON(http.StatusOK, gin.H{
		"threads": items,
		"total":   total,
		"page":    page(c),
	})
}

// Create 发帖 POST /api/threads
func (h *ThreadHandler) Create(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, bindError(err))
		return
	}

	thread, warning, err := h.threads.Create(c.Request.Context(), currentUser(c), services.CreateThreadInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"thread":     newThreadView(*thread, true),
		"moderation": warning,
	})
}

// Detail 帖子详情 + 评论树 GET /api/threads/:id
func (h *ThreadHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.threads.Detail(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newThreadDetailView(detail))
}

// UpdateStatus PATCH /api/threads/:id/status
func (h *ThreadHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, bindError(err))
		return
	}

	thread, err := h.threads.UpdateStatus(c.Request.Context(), currentUser(c), id, models.ThreadStatus(req.Status))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": thread.ID, "status": thread.Status})
}
