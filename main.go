package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"example.com/glowshop/internal/cartstore"
	"example.com/glowshop/internal/infra/payment"
	"example.com/glowshop/internal/infra/persistence/mysql"
	"example.com/glowshop/internal/infra/security"
	"example.com/glowshop/internal/infra/smtp"
	httpapi "example.com/glowshop/internal/interface/http"
	authuc "example.com/glowshop/internal/usecase/auth"
	cartuc "example.com/glowshop/internal/usecase/cart"
	cataloguc "example.com/glowshop/internal/usecase/catalog"
	checkoutuc "example.com/glowshop/internal/usecase/checkout"
	"example.com/glowshop/internal/usecase/notify"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	port := getenv("APP_PORT", "8080")
	mysqlDSN := getenv("MYSQL_DSN", "user:pass@tcp(mysql:3306)/glowshop?parseTime=true")
	redisAddr := getenv("REDIS_ADDR", "redis:6379")
	jwtSecret := getenv("JWT_SECRET", "dev-secret-change-me")
	paymentKey := getenv("PAYMENT_API_KEY", "")
	paymentBase := getenv("PAYMENT_BASE_URL", "https://api.payment.example.com")
	returnURL := getenv("CHECKOUT_RETURN_URL", "http://localhost:"+port+"/api/v1/checkout/return")
	smtpAddr := getenv("SMTP_ADDR", "mailpit:1025")
	smtpFrom := getenv("SMTP_FROM", "orders@glowshop.example.com")

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatal("mysql open failed", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	store := cartstore.NewRedisStore(rdb)

	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	tokenSvc := security.NewJWTService(jwtSecret, 24*time.Hour)
	authSvc := authuc.NewService(userRepo, security.NewBcryptService(0), tokenSvc)
	catalogSvc := cataloguc.NewService(productRepo)
	cartSvc := cartuc.NewService(store)

	gateway := payment.NewClient(payment.Config{
		BaseURL:    paymentBase,
		APIKey:     paymentKey,
		SuccessURL: returnURL + "?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  returnURL + "?cancel=true",
	})
	mailer := smtp.NewMailer(smtpAddr, smtpFrom)

	checkoutSvc := checkoutuc.NewService(
		productRepo, gateway, store, orderRepo, cartSvc, mailer, log)

	dispatcher := notify.NewDispatcher(checkoutSvc.ConfirmEmail, 64, log)
	defer dispatcher.Close()

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:     authSvc,
		CatalogService:  catalogSvc,
		CartService:     cartSvc,
		CheckoutService: checkoutSvc,
		MailQueue:       dispatcher,
		Receipts:        orderRepo,
		TokenService:    tokenSvc,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Stop accepting requests first, then let the dispatcher drain queued
	// confirmation mail via the deferred Close.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
