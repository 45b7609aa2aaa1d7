package handlers

import (
	"net/http"
	"strings"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func (h *Handler) GetCustomers(c *gin.Context) {
	customers, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

type CustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *Handler) AddCustomer(c *gin.Context) {
	var input CustomerInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	customer := models.Customer{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	if customer.Name == "" {
		fail(c, errors.Wrap(apperrors.ErrInvalidInput, "customer name is required"))
		return
	}

	if err := h.store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}
