package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tenancy/internal/infrastructure/config"
	"github.com/orris-inc/tenancy/internal/infrastructure/permission"
	"github.com/orris-inc/tenancy/internal/interfaces/http/handlers"
	"github.com/orris-inc/tenancy/internal/interfaces/http/middleware"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// Router owns the gin engine and the handlers mounted on it.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	logger logger.Interface

	subscriptionHandler *handlers.SubscriptionHandler
	entitlementHandler  *handlers.EntitlementHandler
	planHandler         *handlers.PlanHandler
	paymentHandler      *handlers.PaymentHandler
	healthHandler       *handlers.HealthHandler

	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimiter          *middleware.RateLimiter
	metricsHandler       http.Handler
}

type redisPinger struct {
	ping func(ctx context.Context) error
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.ping(ctx)
}

func NewRouter(c *Container, cfg *config.Config, log logger.Interface) (*Router, error) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return nil, err
	}
	checks := map[string]handlers.Pinger{"database": sqlDB}
	if c.Redis != nil {
		checks["redis"] = redisPinger{ping: func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }}
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		logger: log,

		subscriptionHandler: handlers.NewSubscriptionHandler(c.Service, c.Enforcer, log),
		entitlementHandler:  handlers.NewEntitlementHandler(c.Service, log),
		planHandler:         handlers.NewPlanHandler(c.Service, log),
		healthHandler:       handlers.NewHealthHandler(checks, log),

		authMiddleware:       middleware.NewAuthMiddleware(c.JWT, log),
		permissionMiddleware: middleware.NewPermissionMiddleware(c.Enforcer, log),
		metricsHandler:       c.Metrics.Handler(),
	}

	// A nil *StripeGateway must stay a nil interface.
	if c.Stripe != nil {
		r.paymentHandler = handlers.NewPaymentHandler(c.Service, c.Stripe, log)
	} else {
		r.paymentHandler = handlers.NewPaymentHandler(c.Service, nil, log)
	}

	if cfg.RateLimit.Enabled && c.Redis != nil {
		r.rateLimiter = middleware.NewRateLimiter(c.Redis, "api", cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
	}

	r.engine.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log, c.Metrics),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
	return r, nil
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))

	webhooks := r.engine.Group("/webhooks/payments")
	r.limit(webhooks)
	webhooks.POST("/stripe", r.paymentHandler.StripeWebhook)

	api := r.engine.Group("/api", r.authMiddleware.RequireAuth())
	r.limit(api)

	r.setupPlanRoutes(api)
	r.setupTenantRoutes(api)
	r.setupPaymentRoutes(api)
}

func (r *Router) limit(group *gin.RouterGroup) {
	if r.rateLimiter != nil {
		group.Use(r.rateLimiter.Limit())
	}
}

func (r *Router) require(resource, action string) gin.HandlerFunc {
	return r.permissionMiddleware.RequirePermission(resource, action)
}

func (r *Router) setupPlanRoutes(api *gin.RouterGroup) {
	api.GET("/plans", r.require(permission.ResourcePlan, permission.ActionRead), r.planHandler.ListPlans)
	api.POST("/admin/plans/sync", r.require(permission.ResourcePlan, permission.ActionSync), r.planHandler.SyncPlans)
}

func (r *Router) setupTenantRoutes(api *gin.RouterGroup) {
	tenants := api.Group("/tenants/:id", r.authMiddleware.RequireTenantAccess("id"))
	{
		tenants.GET("/subscription", r.require(permission.ResourceSubscription, permission.ActionRead), r.subscriptionHandler.GetCurrent)
		tenants.POST("/subscription", r.require(permission.ResourceSubscription, permission.ActionWrite), r.subscriptionHandler.Subscribe)
		tenants.DELETE("/subscription", r.require(permission.ResourceSubscription, permission.ActionWrite), r.subscriptionHandler.Cancel)
		tenants.PUT("/subscription/plan", r.require(permission.ResourceSubscription, permission.ActionWrite), r.subscriptionHandler.ChangePlan)
		tenants.GET("/subscription/plan-change", r.require(permission.ResourceSubscription, permission.ActionRead), r.subscriptionHandler.ValidatePlanChange)
		tenants.POST("/subscription/extend", r.require(permission.ResourceSubscription, permission.ActionExtend), r.subscriptionHandler.Extend)
		tenants.GET("/entitlement", r.require(permission.ResourceEntitlement, permission.ActionRead), r.entitlementHandler.GetAllowance)
	}
}

func (r *Router) setupPaymentRoutes(api *gin.RouterGroup) {
	api.POST("/payments/:transaction_id/confirm", r.require(permission.ResourcePayment, permission.ActionConfirm), r.paymentHandler.ConfirmManual)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
