package router

import (
	"strings"

	"github.com/atlas-shop/internal/cache"
	"github.com/atlas-shop/internal/config"
	adminhandlers "github.com/atlas-shop/internal/http/handlers/admin"
	publichandlers "github.com/atlas-shop/internal/http/handlers/public"
	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/metrics"
	"github.com/atlas-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimits 各入口的限流规则
type rateLimits struct {
	client     *redis.Client
	login      RateLimitRule
	adminLogin RateLimitRule
	checkout   RateLimitRule
}

func newRateLimits(cfg *config.Config) rateLimits {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "atlas"
	}
	rule := func(name string, limit config.RateLimitConfig) RateLimitRule {
		return RateLimitRule{
			Prefix:        prefix + ":rate:" + name,
			WindowSeconds: limit.WindowSeconds,
			MaxRequests:   limit.MaxAttempts,
		}
	}
	return rateLimits{
		client:     cache.Client(),
		login:      rule("login", cfg.Security.LoginRateLimit),
		adminLogin: rule("admin_login", cfg.Security.LoginRateLimit),
		checkout:   rule("checkout", cfg.Security.CheckoutRateLimit),
	}
}

func metricsPath(cfg config.MetricsConfig) string {
	path := strings.TrimSpace(cfg.Path)
	if path == "" || path[0] != '/' {
		return "/metrics"
	}
	return path
}

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
		r.GET(metricsPath(cfg.Metrics), gin.WrapH(metrics.Handler()))
	}

	limits := newRateLimits(cfg)
	apiV1 := r.Group("/api/v1")
	registerCustomerRoutes(apiV1, cfg, c, limits)
	registerAdminRoutes(r, apiV1.Group("/admin"), cfg, c, limits)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func registerCustomerRoutes(apiV1 *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits rateLimits) {
	h := publichandlers.New(c)

	apiV1.GET("/public/shipping-cities", h.GetShippingCities)

	auth := apiV1.Group("/auth")
	auth.POST("/register", h.UserRegister)
	auth.POST("/login", RateLimitMiddleware(limits.client, limits.login, KeyByIPAndJSONField("email")), h.UserLogin)

	user := apiV1.Group("", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	{
		// 购物车
		user.GET("/cart", h.GetCart)
		user.POST("/cart/items", h.AddCartItem)
		user.PATCH("/cart/items/:id", h.UpdateCartItem)
		user.DELETE("/cart/items/:id", h.RemoveCartItem)

		// 下单与订单
		user.POST("/orders", RateLimitMiddleware(limits.client, limits.checkout, KeyByUserID), h.PlaceOrder)
		user.GET("/orders", h.ListOrders)
		user.GET("/orders/:order_no", h.GetOrderByOrderNo)

		user.GET("/coupons", h.ListMyCoupons)
		user.GET("/loyalty", h.GetLoyalty)
		user.POST("/loyalty/convert", h.ConvertPoints)
		user.GET("/notifications", h.ListNotifications)
		user.POST("/notifications/:id/read", h.MarkNotificationRead)
	}
}

// registerAdminRoutes 除登录外全部经过令牌校验与 RBAC
func registerAdminRoutes(engine *gin.Engine, admin *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits rateLimits) {
	h := adminhandlers.New(c)

	admin.POST("/login", RateLimitMiddleware(limits.client, limits.adminLogin, KeyByIPAndJSONField("username")), h.AdminLogin)

	authorized := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
	{
		authorized.GET("/orders", h.AdminListOrders)
		authorized.GET("/orders/:id", h.AdminGetOrder)
		authorized.PATCH("/orders/:id/status", h.AdminUpdateOrderStatus)

		authorized.POST("/coupons", h.CreateCoupon)

		authorized.GET("/authz/roles", h.ListAuthzRoles)
		authorized.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
		authorized.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
		authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
			response.Success(ctx, buildAdminPermissionCatalog(engine))
		})
	}
}
