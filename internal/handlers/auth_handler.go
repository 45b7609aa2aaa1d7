package handlers

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Unknown user and wrong password answer the same way.
	user, err := h.store.FindUserByName(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		fail(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	role := user.EffectiveRole()
	token, err := h.issuer.GenerateToken(user.ID, role)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     role,
		"username": user.Username,
	})
}

// Register creates an account. The very first account becomes the admin so
// a fresh install can be set up; everyone after that starts as a cashier.
func (h *Handler) Register(c *gin.Context) {
	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}
	if len(input.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.FindUserByName(ctx, input.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username is taken"})
		return
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		fail(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hashedPassword),
	}
	if err := h.store.RegisterUser(ctx, &user); err != nil {
		fail(c, err)
		return
	}

	middleware.Logger(c).WithField("username", user.Username).WithField("role", user.Role).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!", "user": user})
}
