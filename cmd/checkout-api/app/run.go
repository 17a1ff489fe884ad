package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/ebooklane/checkout-api/configs"
	"github.com/ebooklane/checkout-api/internal/adapter/bank"
	"github.com/ebooklane/checkout-api/internal/adapter/cache"
	apihttp "github.com/ebooklane/checkout-api/internal/adapter/http"
	"github.com/ebooklane/checkout-api/internal/adapter/http/middleware"
	"github.com/ebooklane/checkout-api/internal/adapter/kafka"
	"github.com/ebooklane/checkout-api/internal/adapter/queue"
	"github.com/ebooklane/checkout-api/internal/adapter/repo"
	"github.com/ebooklane/checkout-api/internal/logging"
	"github.com/ebooklane/checkout-api/internal/security"
	"github.com/ebooklane/checkout-api/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config, env string) (*App, func(), error) {
	log := logging.New("app")

	// mysql
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// background context for consumers, pollers, and sweeps
	bgCtx, stopBackground := context.WithCancel(context.Background())

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	couponRepo := repo.NewMySQLCouponRepo(db)
	entitlementRepo := repo.NewMySQLEntitlementRepo(db)
	catalog := repo.NewMySQLCatalogRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)

	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.StatusCache.TTL)
	tokenStore := cache.NewRedisTokenStore(rdb)

	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		stopBackground()
		return nil, nil, err
	}

	// usecases
	pricer := usecase.NewPricer(couponRepo)
	createUC := usecase.NewCreateOrder(catalog, pricer, orderRepo, idem, outboxRepo, statusCache, usecase.CheckoutPolicy{
		PaymentWindow:         cfg.Checkout.PaymentWindow,
		TransferCodeAttempts:  cfg.Checkout.TransferCodeAttempts,
		AutoConfirmZeroAmount: cfg.Checkout.AutoConfirmZeroAmount,
		Beneficiary: usecase.Beneficiary{
			Name:     cfg.Bank.BeneficiaryName,
			Account:  cfg.Bank.BeneficiaryAccount,
			BankName: cfg.Bank.BankName,
		},
	})
	cancelUC := usecase.NewCancelOrder(orderRepo, statusCache)
	queryUC := usecase.NewOrderQuery(orderRepo, statusCache)
	entitlementsUC := usecase.NewEntitlements(entitlementRepo)
	downloadsUC := usecase.NewAuthorizeDownload(entitlementRepo, catalog, tokenStore, cfg.Download.TokenTTL)
	couponAdminUC := usecase.NewCouponAdmin(couponRepo)
	reconciler := usecase.NewReconciler(orderRepo, statusCache, outboxRepo, logging.New("reconciler"))

	// outbox drain + payment-window sweep
	drainer := queue.NewOutboxDrainer(outboxRepo, producer, logging.New("outbox"))
	drainer.Start(bgCtx)
	startExpirySweep(bgCtx, reconciler, cfg.Checkout.ExpirySweepInterval)

	// push ingestion: ops confirmations from RabbitMQ
	if err := setupQueue(ch, reconciler); err != nil {
		stopBackground()
		return nil, nil, err
	}

	// push ingestion: gateway confirmations from Kafka
	if err := setupKafkaListener(bgCtx, cfg, reconciler); err != nil {
		stopBackground()
		return nil, nil, err
	}

	// pull ingestion: bank statement poller
	poller := bank.NewPoller(cfg.Bank.StatementURL, cfg.Bank.PollInterval, cfg.Bank.PollLookback, reconciler, logging.New("bank"))
	poller.Start(bgCtx)

	// webhook signatures are optional in local setups without key material
	var sig *middleware.SignatureVerify
	if cfg.Security.WebhookRSAPubPEM != "" {
		keys, err := security.LoadWebhookKeys(cfg)
		if err != nil {
			stopBackground()
			return nil, nil, err
		}
		signer, err := security.NewWebhookSigner(keys)
		if err != nil {
			stopBackground()
			return nil, nil, err
		}
		sig = middleware.NewSignatureVerify(signer, keys.KeyID)
	} else {
		log.Warn("webhook signature keys not configured; payment webhook disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Orders:       apihttp.NewOrderHandler(createUC, cancelUC, queryUC),
		Entitlements: apihttp.NewEntitlementHandler(entitlementsUC, downloadsUC),
		Admin:        apihttp.NewAdminHandler(couponAdminUC),
		Webhooks:     apihttp.NewWebhookHandler(reconciler),
		Token:        apihttp.NewTokenHandler(cfg),
		Authz:        middleware.NewAuthz(cfg),
		Signature:    sig,
		ExposeTest:   env != "prod",
	})

	cleanup := func() {
		stopBackground()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp.Channel, rec *usecase.Reconciler) error {
	h := queue.NewManualConfirmationHandler(rec)

	router := queue.NewRouter(ch, logging.New("queue"), queue.WithPrefetch(50))
	router.Register(queue.ManualConfirmQueue, queue.JSONHandler[usecase.PaymentConfirmedMsg]{HandleFunc: h.HandleConfirm})

	return router.Start()
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, rec *usecase.Reconciler) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewPaymentConfirmedHandler(rec)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.ConfirmationTopic}, h.Handle, logging.New("kafka"))

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "error", err)
		}
	}()
	return nil
}

func startExpirySweep(ctx context.Context, rec *usecase.Reconciler, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				_, _ = rec.ExpirePastDue(sweepCtx, now)
				cancel()
			}
		}
	}()
}
