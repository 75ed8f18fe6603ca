package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/cart"
	"github.com/example/invithe/internal/config"
	"github.com/example/invithe/internal/handlers"
	"github.com/example/invithe/internal/middleware"
	"github.com/example/invithe/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, events services.EventPublisher) {
	gateway := services.NewPaymentService(cfg.PaymentAPIURL, cfg.PaymentSecretKey, cfg.PaymentWebhookSecret)
	mailer := services.NewMailerService(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.AdminEmail)

	cartStore := cart.NewStore()
	cartService := services.NewCartService(db, cartStore)
	checkoutService := services.NewCheckoutService(db, gateway, events, cfg.AppURL)
	fulfillmentService := services.NewFulfillmentService(db, mailer, events)
	orderService := services.NewOrderService(db)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(db, cfg, auditService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(cartService, checkoutService, fulfillmentService, gateway)
	webhookHandler := handlers.NewWebhookHandler(gateway, fulfillmentService)
	productHandler := handlers.NewProductHandler(db, auditService)
	catalogHandler := handlers.NewCatalogHandler(db, auditService)
	promoHandler := handlers.NewPromoHandler(db, auditService)
	reviewHandler := handlers.NewReviewHandler(db, auditService)
	orderHandler := handlers.NewOrderHandler(orderService, auditService)

	api := app.Group("/api")

	// Public catalog
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:slug", productHandler.GetProduct)
	api.Get("/products/:slug/reviews", reviewHandler.ListProductReviews)
	api.Post("/products/:slug/reviews", reviewHandler.SubmitReview)
	api.Get("/categories", catalogHandler.ListCategories)

	// Session cart (anonymous, cookie scoped)
	cartGroup := api.Group("/cart", middleware.CartSession())
	cartGroup.Get("/", cartHandler.GetCart)
	cartGroup.Post("/add", cartHandler.AddToCart)
	cartGroup.Put("/update", cartHandler.UpdateCart)
	cartGroup.Delete("/remove", cartHandler.RemoveFromCart)
	cartGroup.Post("/promo", cartHandler.ApplyPromo)

	// Checkout + return-URL confirmation
	checkoutGroup := api.Group("/checkout", middleware.CartSession())
	checkoutGroup.Post("/", checkoutHandler.ProcessCheckout)
	checkoutGroup.Get("/confirm", checkoutHandler.ConfirmCheckout)

	// Payment provider webhook (raw body, signature verified inside)
	api.Post("/webhooks/payment", webhookHandler.HandlePaymentWebhook)

	// Admin
	api.Post("/admin/login", authHandler.Login)

	admin := api.Group("/admin", middleware.AdminAuth(cfg))

	admin.Get("/orders", orderHandler.ListOrders)
	admin.Get("/orders/stale", orderHandler.ListStalePendingOrders)
	admin.Get("/orders/:id", orderHandler.GetOrder)
	admin.Put("/orders/:id/status", orderHandler.UpdateOrderStatus)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
	admin.Put("/products/:id/stock", productHandler.UpdateStock)
	admin.Get("/stock-movements", productHandler.ListStockMovements)

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Get("/categories/:id", catalogHandler.GetCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Get("/promo-codes", promoHandler.ListPromoCodes)
	admin.Post("/promo-codes", promoHandler.CreatePromoCode)
	admin.Put("/promo-codes/:id", promoHandler.UpdatePromoCode)
	admin.Delete("/promo-codes/:id", promoHandler.DeletePromoCode)

	admin.Get("/reviews", reviewHandler.ListReviews)
	admin.Put("/reviews/:id/status", reviewHandler.UpdateReviewStatus)
	admin.Delete("/reviews/:id", reviewHandler.DeleteReview)

	admin.Get("/audit-logs", authHandler.ListAuditLogs)
}
