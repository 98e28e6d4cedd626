package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/server/handlers"
)

// New wires the Gin engine with the books API and, when a webhook handler is
// provided, the messaging routes.
func New(books *handlers.BooksHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/customers", books.ListCustomers)
		api.POST("/customers", books.CreateCustomer)
		api.PUT("/customers/:id", books.UpdateCustomer)
		api.DELETE("/customers/:id", books.DeleteCustomer)

		api.GET("/farms", books.ListFarms)
		api.POST("/farms", books.CreateFarm)
		api.PUT("/farms/:id", books.UpdateFarm)
		api.DELETE("/farms/:id", books.DeleteFarm)

		api.GET("/accounts", books.ListAccounts)
		api.POST("/accounts", books.CreateAccount)
		api.PUT("/accounts/:id", books.UpdateAccount)
		api.DELETE("/accounts/:id", books.DeleteAccount)

		api.GET("/sales", books.ListSales)
		api.POST("/sales", books.CreateSale)
		api.PUT("/sales/:id", books.UpdateSale)
		api.DELETE("/sales/:id", books.DeleteSale)

		api.GET("/receivables", books.ListReceivables)
		api.POST("/receivables", books.CreateReceivable)
		api.PUT("/receivables/:id", books.UpdateReceivable)
		api.DELETE("/receivables/:id", books.DeleteReceivable)

		api.GET("/vouchers", books.ListVouchers)

		api.GET("/reports/sales", books.SalesReport)
		api.GET("/reports/ledger/:customerId", books.LedgerReport)
		api.GET("/reports/farms", books.FarmsReport)
		api.GET("/reports/aging", books.AgingReport)
		api.GET("/reports/accounts", books.ListAccounts)
		api.GET("/dashboard", books.Dashboard)

		api.GET("/export", books.Export)
		api.POST("/import", books.Import)
		api.POST("/reset", books.Reset)
	}

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Bool("messaging", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
