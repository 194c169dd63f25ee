package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger/internal/auth"
	"messenger/internal/repositories"
)

// AuthHandler serves registration, login and session introspection.
type AuthHandler struct {
	userRepo repositories.UserRepository
	jwt      *auth.JWTManager
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, jwt *auth.JWTManager) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, jwt: jwt}
}

// Register creates an account and returns it with a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=6"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), req.Username, req.Email, hash, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login verifies credentials and returns the user with a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, hash, err := h.userRepo.GetCredentials(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, hash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.userRepo.SetOnline(c.Request.Context(), user.ID, true); err != nil {
		log.Printf("set online %d: %v", user.ID, err)
	} else {
		user.Online = true
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt("userID")
	user, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout marks the user offline. The client forgets its token either way.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("userID")
	if err := h.userRepo.SetOnline(c.Request.Context(), userID, false); err != nil {
		log.Printf("set offline %d: %v", userID, err)
	}
	c.Status(http.StatusNoContent)
}
