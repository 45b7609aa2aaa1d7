package handlers

import (
	"net/http"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	for i := range users {
		users[i].Role = users[i].EffectiveRole()
	}
	c.JSON(http.StatusOK, users)
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole takes effect at the user's next login.
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req RoleRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	if !auth.ValidRole(req.Role) {
		fail(c, errors.Wrapf(apperrors.ErrInvalidInput, "unknown role %q", req.Role))
		return
	}
	if id == middleware.UserID(c) {
		fail(c, errors.Wrap(apperrors.ErrInvalidInput, "you cannot change your own role"))
		return
	}

	if err := h.store.SetUserRole(c.Request.Context(), id, req.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "id": id, "role": req.Role})
}
