package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/config"
	"github.com/globalmarket/backend/internal/emailcheck"
	"github.com/globalmarket/backend/internal/es"
	"github.com/globalmarket/backend/internal/handlers"
	"github.com/globalmarket/backend/internal/logging"
	"github.com/globalmarket/backend/internal/mailer"
	"github.com/globalmarket/backend/internal/mykafka"
	"github.com/globalmarket/backend/internal/push"
	"github.com/globalmarket/backend/internal/service/auth"
	"github.com/globalmarket/backend/internal/service/cart"
	"github.com/globalmarket/backend/internal/service/catalog"
	"github.com/globalmarket/backend/internal/service/notification"
	"github.com/globalmarket/backend/internal/service/order"
	"github.com/globalmarket/backend/internal/service/payment"
	"github.com/globalmarket/backend/internal/service/product"
	"github.com/globalmarket/backend/internal/service/token"
	httpserver "github.com/globalmarket/backend/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	brokers := []string{cfg.KAFKA_ADDRESS}
	producer, err := mykafka.NewProducer(brokers, mykafka.Topics())
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	smtp := mailer.NewSMTP(cfg)

	var checker auth.EmailChecker = emailcheck.AllowAll{}
	if cfg.EMAIL_CHECK_URL != "" {
		checker = emailcheck.New(cfg)
	}

	products := &product.Service{DB: db}
	orders := &order.Service{DB: db, Products: products}
	payments := &payment.Service{DB: db}
	carts := &cart.Service{DB: db, Orders: orders, Payments: payments, Products: products}
	subCategories := &catalog.SubCategoryService{DB: db}
	categories := &catalog.CategoryService{DB: db, SubCategories: subCategories}
	authSvc := &auth.Service{DB: db, Mailer: smtp, Checker: checker, FrontendURL: cfg.FRONTEND_URL}
	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}
	notifications := &notification.Service{
		DB:     db,
		Push:   push.NewWebPush(cfg),
		Mailer: smtp,
		Icon:   cfg.FRONTEND_URL + "/assets/icons/icon-96x96.png",
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                  db,
		AuthHandler:         handlers.NewAuthHandler(db, authSvc, tokens, producer),
		CartHandler:         handlers.NewCartHandler(db, carts, producer),
		ProductHandler:      handlers.NewProductHandler(products, producer),
		CatalogHandler:      handlers.NewCatalogHandler(categories, subCategories),
		OrderHandler:        handlers.NewOrderHandler(orders, payments),
		NotificationHandler: handlers.NewNotificationHandler(notifications, producer),
		SearchHandler:       handlers.NewSearchHandler(esClient, cfg.ES_INDEX),
		Tokens:              tokens,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	closeDB(db)

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("db() error: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("db close error: %v", err)
	}
}
