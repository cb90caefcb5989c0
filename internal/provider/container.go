package provider

import (
	"context"
	"time"

	"github.com/atlas-shop/internal/authz"
	"github.com/atlas-shop/internal/cache"
	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/queue"
	"github.com/atlas-shop/internal/repository"
	"github.com/atlas-shop/internal/service"
)

const redisPingTimeout = 2 * time.Second

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	ProductRepo      repository.ProductRepository
	CartRepo         repository.CartRepository
	CouponRepo       repository.CouponRepository
	OrderRepo        repository.OrderRepository
	LoyaltyRepo      repository.LoyaltyRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	CartService         *service.CartService
	InventoryService    *service.InventoryService
	CouponService       *service.CouponService
	CouponAdminService  *service.CouponAdminService
	LoyaltyService      *service.LoyaltyService
	NotificationService *service.NotificationService
	CheckoutService     *service.CheckoutService
	OrderService        *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	} else if cache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		if err := cache.Ping(ctx); err != nil {
			logger.Warnw("provider_redis_ping_failed", "error", err)
		}
		cancel()
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.InventoryService = service.NewInventoryService(c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.LoyaltyService = service.NewLoyaltyService(c.Config.Loyalty, c.LoyaltyRepo, c.CouponRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo)
	c.CheckoutService = service.NewCheckoutService(
		c.Config.Checkout,
		c.CartRepo,
		c.ProductRepo,
		c.OrderRepo,
		c.InventoryService,
		c.CouponService,
		c.NotificationService,
		c.QueueClient,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.LoyaltyService, c.NotificationService, c.QueueClient)
}
