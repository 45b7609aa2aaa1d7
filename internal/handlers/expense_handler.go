package handlers

import (
	"net/http"
	"strings"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetExpenses(c *gin.Context) {
	expenses, err := h.store.ListExpenses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// ExpenseInput carries an optional YYYY-MM-DD date; today is used when it
// is empty.
type ExpenseInput struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (h *Handler) AddExpense(c *gin.Context) {
	var input ExpenseInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}
	if input.Amount.IsNegative() {
		fail(c, errors.Wrapf(apperrors.ErrInvalidInput, "amount %s is negative", input.Amount))
		return
	}

	date := h.now()
	if input.Date != "" {
		d, err := time.ParseInLocation(report.DateLayout, input.Date, h.loc)
		if err != nil {
			fail(c, errors.Wrapf(apperrors.ErrInvalidInput, "expense date %q", input.Date))
			return
		}
		date = d
	}

	expense := models.Expense{
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		ExpenseDate: date,
	}
	if err := h.store.CreateExpense(c.Request.Context(), &expense); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}
