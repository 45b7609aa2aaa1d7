package handlers

import (
	"net/http"

	"go-pos-ledger/internal/dashboard"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetDashboard(c *gin.Context) {
	summary, err := dashboard.Load(c.Request.Context(), h.store, h.now(), h.loc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
