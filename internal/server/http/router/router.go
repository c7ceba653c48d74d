package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/printflow/printflow/internal/app"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/server/http/handlers"
	"github.com/printflow/printflow/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade *app.PrintFlowFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)
	validationHandler := handlers.NewValidationHandler(facade)

	api := engine.Group("/api")

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	// Gateway redirects the customer's browser here; the correlation token in
	// the query string is the credential.
	api.GET("/payments/callback", paymentHandler.Callback)

	auth := api.Group("")
	auth.Use(middleware.AuthRequired(facade))

	auth.POST("/orders", orderHandler.Create)
	auth.GET("/orders", orderHandler.List)
	auth.GET("/orders/:id", orderHandler.Get)
	auth.POST("/orders/:id/cancel", orderHandler.Cancel)

	auth.POST("/orders/:id/validation", validationHandler.Request)
	auth.GET("/orders/:id/validation", validationHandler.ListReports)

	auth.POST("/orders/:id/payments", paymentHandler.Initiate)
	auth.GET("/orders/:id/payments", paymentHandler.ListByOrder)
	auth.GET("/orders/:id/payments/summary", paymentHandler.Summary)
	auth.GET("/payments/:id", paymentHandler.Get)
	auth.POST("/payments/:id/receipt", paymentHandler.UploadReceipt)

	validator := auth.Group("")
	validator.Use(middleware.RequireRole(facade, model.UserRoleValidator))
	validator.POST("/orders/:id/validation/report", validationHandler.SubmitReport)

	designer := auth.Group("")
	designer.Use(middleware.RequireRole(facade, model.UserRoleDesigner))
	designer.POST("/orders/:id/design", orderHandler.SubmitDesign)

	printShop := auth.Group("/printshop")
	printShop.Use(middleware.RequireRole(facade, model.UserRolePrintShop))
	printShop.GET("/queue", orderHandler.Queue)
	printShop.GET("/orders", orderHandler.Accepted)

	auth.POST("/orders/:id/accept", orderHandler.Accept)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(facade, model.UserRoleAdmin))
	admin.POST("/staff", authHandler.CreateStaff)
	admin.GET("/payments/pending", paymentHandler.PendingApprovals)
	admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	admin.POST("/payments/:id/approve", paymentHandler.Approve)
	admin.POST("/payments/:id/reject", paymentHandler.Reject)
	admin.POST("/payments/:id/reset", paymentHandler.Reset)

	return engine
}
