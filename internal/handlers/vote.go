package handlers

import (
	"net/http"

	"hypoforum/internal/errs"
	"hypoforum/internal/models"
	"hypoforum/internal/services"
	"hypoforum/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type castVoteRequest struct {
	TargetType string `json:"targetType" binding:"required,targetkind"`
	TargetID   uint   `json:"targetId" binding:"required"`
	VoteType   string `json:"voteType" binding:"required"`
}

// Cast 投票 POST /api/votes
func (h *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, bindError(err))
		return
	}
	target, err := models.NewTarget(models.TargetKind(req.TargetType), req.TargetID)
	if err != nil {
		RenderError(c, errs.ErrInvalidTargetType)
		return
	}

	res, err := h.votes.CastVote(c.Request.Context(), currentUser(c), target, models.VoteType(req.VoteType))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Withdraw 撤销投票 DELETE /api/votes/:targetType/:targetId
func (h *VoteHandler) Withdraw(c *gin.Context) {
	id, err := utils.ParseID(c.Param("targetId"))
	if err != nil {
		RenderError(c, errs.Validation(err.Error()))
		return
	}
	target, err := models.NewTarget(models.TargetKind(c.Param("targetType")), id)
	if err != nil {
		RenderError(c, errs.ErrInvalidTargetType)
		return
	}

	delta, err := h.votes.WithdrawVote(c.Request.Context(), currentUser(c), target)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delta": delta})
}

// Mine 我的投票 GET /api/votes/my?targetType=&limit=
func (h *VoteHandler) Mine(c *gin.Context) {
	kind := models.TargetKind(c.Query("targetType"))
	if kind != "" {
		if _, err := models.NewTarget(kind, 1); err != nil {
			RenderError(c, errs.ErrInvalidTargetType)
			return
		}
	}
	limit := utils.StringToInt(c.DefaultQuery("limit", "50"), 50)

	votes, err := h.votes.ListVotes(c.Request.Context(), currentUser(c).ID, kind, limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
