package router

import (
	"github.com/gin-gonic/gin"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/auth"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/handler"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted by CommerceRoutes
type Handlers struct {
	Checkout    *handler.CheckoutHandler
	Order       *handler.OrderHandler
	Payment     *handler.PaymentHandler
	Fulfillment *handler.FulfillmentHandler
	Return      *handler.ReturnHandler
	Claim       *handler.ClaimHandler
	Exchange    *handler.ExchangeHandler
	OrderEdit   *handler.OrderEditHandler
	Inventory   *handler.InventoryHandler
	Outbox      *handler.OutboxHandler
	System      *handler.SystemHandler
}

// RegisterProbes mounts the liveness and readiness probes at the engine root,
// outside authentication
func RegisterProbes(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)
}

// CommerceRoutes builds the order, inventory and operator route groups.
// adminGuard runs in front of the outbox endpoints.
func CommerceRoutes(h Handlers, adminGuard gin.HandlerFunc) []RouteRegistrar {
	can := middleware.RequirePermission
	readOrders := can(auth.PermissionOrdersRead)
	writeOrders := can(auth.PermissionOrdersWrite)
	writeReturns := can(auth.PermissionReturnsWrite)

	checkout := NewDomainGroup("checkout", "/checkout")
	checkout.POST("", writeOrders, h.Checkout.PlaceOrder)

	orders := NewDomainGroup("orders", "/orders")
	orders.GET("", readOrders, h.Order.List)
	orders.GET("/:id", readOrders, h.Order.GetByID)
	orders.POST("/:id/confirm", writeOrders, h.Order.Confirm)
	orders.POST("/:id/complete", writeOrders, h.Order.Complete)
	orders.POST("/:id/cancel", writeOrders, h.Order.Cancel)
	orders.PUT("/:id/notes", writeOrders, h.Order.AddNote)

	payments := can(auth.PermissionPaymentsWrite)
	orders.POST("/:id/payments/authorize", payments, h.Payment.Authorize)
	orders.POST("/:id/payments/capture", payments, h.Payment.Capture)
	orders.POST("/:id/payments", payments, h.Payment.RecordPayment)
	orders.POST("/:id/refunds", can(auth.PermissionRefundsWrite), h.Payment.Refund)

	fulfill := can(auth.PermissionFulfillWrite)
	orders.POST("/:id/fulfillments", fulfill, h.Fulfillment.Create)
	orders.POST("/:id/fulfillments/:fulfillment_id/ship", fulfill, h.Fulfillment.Ship)
	orders.POST("/:id/fulfillments/:fulfillment_id/deliver", fulfill, h.Fulfillment.Deliver)
	orders.POST("/:id/fulfillments/:fulfillment_id/cancel", fulfill, h.Fulfillment.Cancel)

	orders.GET("/:id/returns", readOrders, h.Return.ListByOrder)
	orders.POST("/:id/returns", writeReturns, h.Return.Request)
	orders.GET("/:id/claims", readOrders, h.Claim.ListByOrder)
	orders.POST("/:id/claims", writeReturns, h.Claim.Create)
	orders.GET("/:id/exchanges", readOrders, h.Exchange.ListByOrder)
	orders.POST("/:id/exchanges", writeReturns, h.Exchange.Create)
	orders.GET("/:id/edits", readOrders, h.OrderEdit.ListByOrder)
	orders.POST("/:id/edits", writeOrders, h.OrderEdit.Create)

	orderNumbers := NewDomainGroup("order-numbers", "/order-numbers")
	orderNumbers.GET("/:number", readOrders, h.Order.GetByOrderNumber)

	returns := NewDomainGroup("returns", "/returns")
	returns.GET("/:id", readOrders, h.Return.Get)
	returns.POST("/:id/receive", writeReturns, h.Return.Receive)
	returns.POST("/:id/complete", writeReturns, h.Return.Complete)
	returns.POST("/:id/cancel", writeReturns, h.Return.Cancel)

	claims := NewDomainGroup("claims", "/claims")
	claims.GET("/:id", readOrders, h.Claim.Get)
	claims.POST("/:id/approve", writeReturns, h.Claim.Approve)
	claims.POST("/:id/reject", writeReturns, h.Claim.Reject)

	exchanges := NewDomainGroup("exchanges", "/exchanges")
	exchanges.GET("/:id", readOrders, h.Exchange.Get)
	exchanges.POST("/:id/process", writeReturns, h.Exchange.Process)
	exchanges.POST("/:id/pay", middleware.RequireAllPermissions(auth.PermissionPaymentsWrite, auth.PermissionReturnsWrite), h.Exchange.Pay)
	exchanges.POST("/:id/complete", writeReturns, h.Exchange.Complete)
	exchanges.POST("/:id/cancel", writeReturns, h.Exchange.Cancel)

	edits := NewDomainGroup("order-edits", "/order-edits")
	edits.GET("/:id", readOrders, h.OrderEdit.Get)
	edits.POST("/:id/request", writeOrders, h.OrderEdit.Request)
	edits.POST("/:id/confirm", writeOrders, h.OrderEdit.Confirm)
	edits.POST("/:id/decline", writeOrders, h.OrderEdit.Decline)
	edits.POST("/:id/cancel", writeOrders, h.OrderEdit.Cancel)

	readStock := can(auth.PermissionInventoryRead)
	writeStock := can(auth.PermissionInventoryWrite)
	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/levels", readStock, h.Inventory.GetLevel)
	inventory.GET("/variants/:variant_id/levels", readStock, h.Inventory.ListLevels)
	inventory.GET("/movements", readStock, h.Inventory.ListMovements)
	inventory.GET("/movements/by-reference/:type/:id", readStock, h.Inventory.MovementsByReference)
	inventory.POST("/adjust", writeStock, h.Inventory.Adjust)
	inventory.POST("/receive", writeStock, h.Inventory.Receive)
	inventory.POST("/count", writeStock, h.Inventory.Count)
	inventory.POST("/transfer", writeStock, h.Inventory.Transfer)
	inventory.POST("/backorder", writeStock, h.Inventory.SetBackorder)

	admin := NewDomainGroup("admin", "/admin")
	if adminGuard != nil {
		admin.Use(adminGuard)
	}
	outbox := admin.Group("outbox", "/outbox")
	outbox.Use(can(auth.PermissionOutboxAdmin))
	outbox.GET("/stats", h.Outbox.GetStats)
	outbox.GET("/dead", h.Outbox.GetDeadLetterEntries)
	outbox.POST("/dead/retry-all", h.Outbox.RetryAllDeadEntries)
	outbox.POST("/sent/purge", h.Outbox.PurgeSent)
	outbox.GET("/:id", h.Outbox.GetEntry)
	outbox.POST("/:id/retry", h.Outbox.RetryDeadEntry)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{
		checkout, orders, orderNumbers, returns, claims, exchanges, edits, inventory, admin, system,
	}
}
