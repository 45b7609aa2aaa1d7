package handlers

import (
	"encoding/json"
	"net/http"

	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/internal/settings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Current())
}

// formValue accepts a setting typed as a JSON string or a JSON number.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = formValue(n.String())
	return nil
}

// SettingsInput holds the values as typed in the form. Omitted fields keep
// their current value.
type SettingsInput struct {
	TaxRate           *formValue `json:"tax_rate"`
	LowStockThreshold *formValue `json:"low_stock_threshold"`
}

// UpdateSettings validates, stores, and then publishes the new snapshot so
// the next sale uses it.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input SettingsInput
	if err := bind(c, &input); err != nil {
		fail(c, err)
		return
	}

	next := h.settings.Current()
	if input.TaxRate != nil {
		rate, err := settings.ParseTaxRate(string(*input.TaxRate))
		if err != nil {
			fail(c, err)
			return
		}
		next.TaxRate = rate
	}
	if input.LowStockThreshold != nil {
		threshold, err := settings.ParseThreshold(string(*input.LowStockThreshold))
		if err != nil {
			fail(c, err)
			return
		}
		next.LowStockThreshold = threshold
	}

	if err := h.store.SaveSettings(c.Request.Context(), next.Rows()); err != nil {
		fail(c, err)
		return
	}
	h.settings.Set(next)

	middleware.Logger(c).WithFields(log.Fields{
		"tax_rate":            next.TaxRate.String(),
		"low_stock_threshold": next.LowStockThreshold,
	}).Info("settings updated")
	c.JSON(http.StatusOK, next)
}
