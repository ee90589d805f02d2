package handlers

import (
	"errors"
	"net/http"

	"updoot/internal/middleware"
	"updoot/internal/models"
	"updoot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// signIn stores the user id in the session cookie.
func signIn(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	return session.Save()
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid body")
		return
	}

	user, err := h.auth.Register(input)
	if err != nil {
		if ferrs := fieldErrors(err); ferrs != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": ferrs})
			return
		}
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"errors": []FieldError{
				{Field: "usernameOrEmail", Message: "this username or email already exists"},
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if err := signIn(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Private()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid body")
		return
	}

	user, err := h.auth.Login(input.UsernameOrEmail, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"errors": []FieldError{
				{Field: "usernameOrEmail", Message: "invalid credentials"},
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if err := signIn(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Private()})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the signed-in user, email included, or null when signed out.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Private()})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid body")
		return
	}

	// Always report success so the endpoint can't probe for accounts.
	if err := h.auth.ForgotPassword(c.Request.Context(), input.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid body")
		return
	}

	user, err := h.auth.ChangePassword(c.Request.Context(), input.Token, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "newPassword", Message: "length less than 4"},
			}})
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "token", Message: "token expired"},
			}})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "token", Message: "user no longer exists"},
			}})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		}
		return
	}

	if err := signIn(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Private()})
}
