package handlers

import (
	"net/http"

	"go-pos-ledger/internal/auth"
	"go-pos-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Routes mounts the public and the protected API on r.
func (h *Handler) Routes(r gin.IRouter, allowRegistration bool) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	// --- FEATURE FLAG: Registration ---
	if allowRegistration {
		r.POST("/register", h.Register)
		log.Warn("registration route is OPEN, disable ALLOW_REGISTRATION in production")
	} else {
		log.Info("registration route is disabled")
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.issuer))

	guard := func(res auth.Resource) gin.IRoutes {
		return api.Group("", middleware.RequireAccess(res))
	}

	dashboard := guard(auth.ResourceDashboard)
	dashboard.GET("/dashboard", h.GetDashboard)

	products := guard(auth.ResourceProducts)
	products.GET("/products", h.GetProducts)
	products.POST("/products", h.AddProduct)
	products.PUT("/products/:id", h.UpdateProduct)

	customers := guard(auth.ResourceCustomers)
	customers.GET("/customers", h.GetCustomers)
	customers.POST("/customers", h.AddCustomer)

	expenses := guard(auth.ResourceExpenses)
	expenses.GET("/expenses", h.GetExpenses)
	expenses.POST("/expenses", h.AddExpense)

	sales := guard(auth.ResourceSales)
	sales.GET("/sales", h.GetSales)
	sales.POST("/sales", h.ProcessSale)
	sales.POST("/sales/preview", h.PreviewSale)
	sales.GET("/sales/:id/receipt", h.GetReceipt)
	sales.GET("/discounts", h.GetDiscounts)

	guard(auth.ResourceDiscounts).POST("/discounts", h.AddDiscount)

	reports := guard(auth.ResourceReports)
	reports.GET("/reports", h.GetReport)
	reports.GET("/reports/export", h.ExportReport)
	reports.GET("/reports/valuation", h.GetStockValuation)

	settings := guard(auth.ResourceSettings)
	settings.GET("/settings", h.GetSettings)
	settings.PUT("/settings", h.UpdateSettings)

	users := guard(auth.ResourceUsers)
	users.GET("/users", h.GetUsers)
	users.PUT("/users/:id/role", h.UpdateUserRole)

	guard(auth.ResourceAssistant).POST("/ask", h.AskAI)
}
