package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	subscriptionApp "github.com/orris-inc/tenancy/internal/application/subscription"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/infrastructure/auth"
	"github.com/orris-inc/tenancy/internal/infrastructure/config"
	"github.com/orris-inc/tenancy/internal/infrastructure/email"
	"github.com/orris-inc/tenancy/internal/infrastructure/lock"
	"github.com/orris-inc/tenancy/internal/infrastructure/metrics"
	"github.com/orris-inc/tenancy/internal/infrastructure/payment"
	"github.com/orris-inc/tenancy/internal/infrastructure/permission"
	"github.com/orris-inc/tenancy/internal/infrastructure/repository"
	"github.com/orris-inc/tenancy/internal/shared/db"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// Container holds the wired application shared by the server and worker
// commands.
type Container struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	JWT      *auth.JWTService
	Enforcer *permission.Enforcer
	// Stripe is nil unless a secret key is configured.
	Stripe  *payment.StripeGateway
	Tenants tenant.Repository
	Service *subscriptionApp.Service

	logger logger.Interface
}

// NewContainer wires every component from cfg on top of an open database.
func NewContainer(cfg *config.Config, database *gorm.DB, log logger.Interface) (*Container, error) {
	c := &Container{
		DB:      database,
		Metrics: metrics.NewMetrics(),
		JWT:     auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.ExpMinutes),
		Tenants: repository.NewTenantRepository(database, log),
		logger:  log,
	}

	if cfg.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			_ = c.Redis.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	enforcer, err := permission.NewEnforcer(database, log)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := enforcer.EnsureDefaultPolicies(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to seed default policies: %w", err)
	}
	c.Enforcer = enforcer

	gateways, err := c.newGatewayRegistry(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	notifier := notification.NewDispatcher(c.newNotificationPort(cfg), log, cfg.Subscription.NotifyTimeout)
	// Reminders run in the worker, which must not exit before they are delivered.
	c.Service = subscriptionApp.NewService(usecases.Deps{
		Subscriptions:    repository.NewSubscriptionRepository(database, log),
		Plans:            repository.NewPlanRepository(database, log),
		Tenants:          c.Tenants,
		Transactions:     repository.NewPaymentTransactionRepository(database, log),
		Employees:        repository.NewEmployeeCounter(database, log),
		Gateways:         gateways,
		Locker:           c.newTenantLocker(cfg),
		TxManager:        db.NewTransactionManager(database),
		Notifier:         notifier,
		ReminderNotifier: notifier.Inline(),
		Metrics:          c.Metrics,
		Logger:           log,
	}, subscriptionApp.ServiceConfig{
		ReminderDays: cfg.Subscription.ReminderDays,
	})

	return c, nil
}

func (c *Container) newTenantLocker(cfg *config.Config) usecases.TenantLocker {
	if c.Redis != nil {
		c.logger.Infow("using redis tenant lock", "addr", cfg.Redis.GetAddr())
		return lock.NewRedisTenantLocker(c.Redis, cfg.Subscription.LockTTL, cfg.Subscription.LockWait, c.logger)
	}
	c.logger.Warnw("redis disabled, tenant lock is local to this process")
	return lock.NewLocalTenantLocker(cfg.Subscription.LockWait)
}

func (c *Container) newNotificationPort(cfg *config.Config) notification.Port {
	if !cfg.Email.Enabled {
		return email.NewLogNotifier(c.logger)
	}
	return email.NewSMTPNotifier(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, c.Tenants, c.logger)
}

func (c *Container) newGatewayRegistry(cfg *config.Config) (*paymentgateway.Registry, error) {
	gateways := []paymentgateway.Gateway{payment.NewManualGateway(cfg.Payment.ManualPayURL)}

	if cfg.Payment.Stripe.SecretKey != "" {
		c.Stripe = payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     cfg.Payment.Stripe.SecretKey,
			WebhookSecret: cfg.Payment.Stripe.WebhookSecret,
			SuccessURL:    cfg.Payment.SuccessURL,
			CancelURL:     cfg.Payment.CancelURL,
		}, c.logger)
		gateways = append(gateways, c.Stripe)
	}

	defaultProvider := vo.PaymentProvider(cfg.Payment.DefaultProvider)
	if !defaultProvider.IsValid() {
		return nil, fmt.Errorf("unknown default payment provider: %q", cfg.Payment.DefaultProvider)
	}
	if defaultProvider == vo.PaymentProviderStripe && c.Stripe == nil {
		return nil, fmt.Errorf("stripe is the default payment provider but no secret key is configured")
	}
	return paymentgateway.NewRegistry(defaultProvider, gateways...), nil
}

// Close releases the Redis connection. The database is owned by the caller.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Warnw("failed to close redis client", "error", err)
		}
	}
}
