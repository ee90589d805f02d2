package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"updoot/internal/middleware"
	"updoot/internal/repositories"
	"updoot/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
	posts repositories.PostRepository
}

func NewVoteHandler(votes *services.VoteService, posts repositories.PostRepository) *VoteHandler {
	return &VoteHandler{votes: votes, posts: posts}
}

// Vote applies the caller's up/down vote to a post and returns the post's
// points after the transition.
func (h *VoteHandler) Vote(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}

	var input struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "direction is required")
		return
	}
	direction, ok := services.ParseDirection(input.Direction)
	if !ok {
		badRequest(c, `direction must be "up" or "down"`)
		return
	}

	switch err := h.votes.ApplyVote(user.ID, uint(postID), direction); {
	case err == nil:
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	case errors.Is(err, services.ErrRedundantVote):
		c.JSON(http.StatusConflict, gin.H{"error": "already voted this way"})
		return
	case errors.Is(err, services.ErrConcurrentVote):
		c.JSON(http.StatusConflict, gin.H{"error": "vote conflicted, try again"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	post, err := h.posts.GetByID(uint(postID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": post.Points})
}
