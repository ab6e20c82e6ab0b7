package handlers

import (
	"net/http"

	"hypoforum/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments  *services.CommentService
	lifecycle *services.CommentLifecycle
}

func NewCommentHandler(comments *services.CommentService, lifecycle *services.CommentLifecycle) *CommentHandler {
	return &CommentHandler{comments: comments, lifecycle: lifecycle}
}

type createCommentRequest struct {
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content" binding:"required"`
}

type editCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type retractRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Create 发表评论 POST /api/threads/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, bindError(err))
		return
	}

	comment, warning, err := h.comments.Create(c.Request.Context(), currentUser(c), services.CreateCommentInput{
		ThreadID: threadID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"comment":    newCommentView(*comment),
		"moderation": warning,
	})
}

// Edit 编辑评论 PUT /api/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req editCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, bindError(err))
		return
	}

	user := currentUser(c)
	comment, warning, err := h.comments.Edit(c.Request.Context(), user, id, req.Content)
	if err != nil {
		RenderError(c, err)
		return
	}
	comment.Author = *user
	c.JSON(http.StatusOK, gin.H{
		"comment":    newCommentView(*comment),
		"moderation": warning,
	})
}

// History 编辑历史 GET /api/comments/:id/history
func (h *CommentHandler) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	edits, err := h.comments.History(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"edits": edits})
}

// Accept 采纳 POST /api/threads/:id/comments/:cid/accept
func (h *CommentHandler) Accept(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "cid")
	if !ok {
		return
	}

	comment, err := h.lifecycle.Accept(c.Request.Context(), currentUser(c), threadID, commentID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": comment.ID, "is_accepted": comment.IsAccepted})
}

// Retract 撤回 POST /api/comments/:id/retract
func (h *CommentHandler) Retract(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req retractRequest
	// body 可选
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RenderError(c, bindError(err))
			return
		}
	}

	comment, err := h.lifecycle.Retract(c.Request.Context(), currentUser(c), id, req.Reason)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             comment.ID,
		"is_retracted":   comment.IsRetracted,
		"retract_reason": comment.RetractReason,
	})
}
