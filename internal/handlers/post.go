package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"updoot/internal/middleware"
	"updoot/internal/models"
	"updoot/internal/repositories"
	"updoot/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts repositories.PostRepository
}

func NewPostHandler(posts repositories.PostRepository) *PostHandler {
	return &PostHandler{posts: posts}
}

// AuthorView is the public author shape embedded in post responses.
type AuthorView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PostView is one post in a list response. VoteStatus is the requesting
// user's own vote (+1/-1) or null when they haven't voted or are signed out.
type PostView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	TextSnippet string     `json:"text_snippet"`
	Points      int        `json:"points"`
	Author      AuthorView `json:"author"`
	VoteStatus  *int       `json:"vote_status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var input struct {
		Title string `json:"title" binding:"required"`
		Text  string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "title is required")
		return
	}

	post := &models.Post{
		UserID: user.ID,
		Title:  input.Title,
		Text:   input.Text,
	}
	if err := h.posts.Create(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// List returns a page of posts, newest first. Authors come in through the
// per-request user loader and the caller's own votes through the updoot
// loader, one batched query each no matter the page size.
func (h *PostHandler) List(c *gin.Context) {
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = min(v, 50)
	}
	var cursor time.Time
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			badRequest(c, "invalid cursor")
			return
		}
		cursor = parsed
	}

	posts, hasMore, err := h.posts.List(limit, cursor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	views, err := h.buildViews(c, posts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	resp := gin.H{"posts": views, "has_more": hasMore}
	if hasMore && len(posts) > 0 {
		resp["next_cursor"] = posts[len(posts)-1].CreatedAt.Format(time.RFC3339Nano)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	views, err := h.buildViews(c, []models.Post{*post})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":      views[0],
		"text":      post.Text,
		"text_html": utils.RenderMarkdown(post.Text),
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid post id")
		return
	}

	if err := h.posts.Delete(uint(id), user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.Status(http.StatusNoContent)
}

// buildViews assembles post views through the request's batch loaders.
func (h *PostHandler) buildViews(c *gin.Context, posts []models.Post) ([]PostView, error) {
	loaders := middleware.Loaders(c)

	authorIDs := make([]uint, len(posts))
	for i, p := range posts {
		authorIDs[i] = p.UserID
	}
	authors, _, err := loaders.Users.LoadAll(authorIDs)
	if err != nil {
		return nil, err
	}

	var (
		votes  []int
		founds []bool
	)
	user, signedIn := middleware.CurrentUser(c)
	if signedIn {
		keys := make([]models.UpdootKey, len(posts))
		for i, p := range posts {
			keys[i] = models.UpdootKey{PostID: p.ID, UserID: user.ID}
		}
		votes, founds, err = loaders.Updoots.LoadAll(keys)
		if err != nil {
			return nil, err
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		view := PostView{
			ID:          p.ID,
			Title:       p.Title,
			TextSnippet: p.Snippet(),
			Points:      p.Points,
			Author:      AuthorView{ID: authors[i].ID, Username: authors[i].Username},
			CreatedAt:   p.CreatedAt,
		}
		if signedIn && founds[i] {
			v := votes[i]
			view.VoteStatus = &v
		}
		views[i] = view
	}
	return views, nil
}
